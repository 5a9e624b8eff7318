package ros

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeRegistryRejectsDuplicateNames(t *testing.T) {
	r := newTypeRegistry()
	require.NoError(t, r.register("std_msgs/String", "desc1"))
	err := r.register("std_msgs/String", "desc2")
	assert.ErrorIs(t, err, ErrBadParam)
}

func TestTypeRegistryLookup(t *testing.T) {
	r := newTypeRegistry()
	require.NoError(t, r.register("std_msgs/String", "desc1"))
	desc, ok := r.lookup("std_msgs/String")
	require.True(t, ok)
	assert.Equal(t, "desc1", desc)

	_, ok = r.lookup("std_msgs/Int32")
	assert.False(t, ok)
}

func TestDescriptorListInsertAndBind(t *testing.T) {
	l := newDescriptorList()
	require.NoError(t, l.Insert(&descriptor{Name: "/chatter"}))

	d, ok := l.Bind("/chatter")
	require.True(t, ok)
	assert.EqualValues(t, 1, d.refcnt)

	l.Release(d)
	assert.EqualValues(t, 0, d.refcnt)
}

func TestDescriptorListInsertRejectsDuplicate(t *testing.T) {
	l := newDescriptorList()
	require.NoError(t, l.Insert(&descriptor{Name: "/chatter"}))
	assert.ErrorIs(t, l.Insert(&descriptor{Name: "/chatter"}), ErrBadParam)
}

func TestDescriptorListUnpublishPreventsFurtherBind(t *testing.T) {
	l := newDescriptorList()
	require.NoError(t, l.Insert(&descriptor{Name: "/chatter"}))

	d, ok := l.Bind("/chatter")
	require.True(t, ok)

	unpub, ok := l.Unpublish("/chatter")
	require.True(t, ok)
	assert.True(t, unpub.Flags.Deleted)

	_, ok = l.Bind("/chatter")
	assert.False(t, ok, "a deleted descriptor must never be bound again")

	l.Release(d)
	assert.EqualValues(t, 0, d.refcnt)
}

func TestDescriptorListBindDescFailsAfterUnpublish(t *testing.T) {
	l := newDescriptorList()
	d := &descriptor{Name: "/chatter"}
	require.NoError(t, l.Insert(d))

	require.True(t, l.BindDesc(d))
	l.Release(d)

	_, ok := l.Unpublish("/chatter")
	require.True(t, ok)
	assert.False(t, l.BindDesc(d))
}

func TestGlobalTypeTablesRegisterAndLookup(t *testing.T) {
	require.NoError(t, RegisterMessageType(tableOnlyMsgType{}))

	got, ok := LookupMessageType(tableOnlyMsgType{}.Name())
	require.True(t, ok)
	assert.Equal(t, tableOnlyMsgType{}.MD5Sum(), got.MD5Sum())

	assert.ErrorIs(t, RegisterMessageType(tableOnlyMsgType{}), ErrBadParam)

	_, ok = LookupServiceType("no_such/Service")
	assert.False(t, ok)
}

// tableOnlyMsgType exists only to exercise the global type table without
// colliding with types other tests register.
type tableOnlyMsgType struct{}

func (tableOnlyMsgType) Text() string        { return "uint8 x" }
func (tableOnlyMsgType) MD5Sum() string      { return "tableonlymd5" }
func (tableOnlyMsgType) Name() string        { return "test_msgs/TableOnly" }
func (tableOnlyMsgType) NewMessage() Message { return nil }

func TestDescriptorListNamesAndEach(t *testing.T) {
	l := newDescriptorList()
	require.NoError(t, l.Insert(&descriptor{Name: "/a"}))
	require.NoError(t, l.Insert(&descriptor{Name: "/b"}))

	assert.ElementsMatch(t, []string{"/a", "/b"}, l.Names())

	seen := map[string]bool{}
	l.Each(func(d *descriptor) { seen[d.Name] = true })
	assert.Equal(t, map[string]bool{"/a": true, "/b": true}, seen)
}
