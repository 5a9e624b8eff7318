package ros

import (
	"net"
	"os"
	"strings"
)

// Remap is the separator CLI remapping arguments use: topic:=value,
// _param:=value, __special:=value.
const Remap = ":="

// NameMap holds one class of processArguments output (ordinary remaps,
// private params, or __special tokens). Params are keyed without their
// leading "_"; specials keep their "__" prefix.
type NameMap map[string]string

// processArguments splits a raw argument list the way roslaunch/rosrun
// produce it: "__name:=foo" style tokens are pulled into specials, "_x:=y"
// into params, "x:=y" into an ordinary remap table, and everything else
// passes through untouched as program arguments.
func processArguments(args []string) (mapping, params, specials NameMap, rest []string) {
	mapping = make(NameMap)
	params = make(NameMap)
	specials = make(NameMap)
	for _, arg := range args {
		components := strings.SplitN(arg, Remap, 2)
		if len(components) != 2 {
			rest = append(rest, arg)
			continue
		}
		key, value := components[0], components[1]
		switch {
		case strings.HasPrefix(key, "__"):
			specials[key] = value
		case strings.HasPrefix(key, "_"):
			params[key[1:]] = value
		default:
			mapping[key] = value
		}
	}
	return mapping, params, specials, rest
}

// qualifyNodeName splits a node name given at construction time into its
// namespace and base name. A name starting with "/" is already absolute;
// otherwise it resolves relative to the root namespace.
func qualifyNodeName(name string) (namespace, nodeName string, err error) {
	if name == "" {
		return "", "", ErrBadParam
	}
	if !strings.HasPrefix(name, "/") {
		return "/", name, nil
	}
	idx := strings.LastIndex(name, "/")
	if idx == 0 {
		return "/", name[1:], nil
	}
	return name[:idx], name[idx+1:], nil
}

// determineHost picks the address this node advertises in its XMLRPC and
// TCPROS URIs. ROS_HOSTNAME/ROS_IP take precedence over the machine's own
// hostname; failing to resolve either falls back to the loopback address,
// which the caller uses to decide whether to bind 127.0.0.1 or 0.0.0.0.
func determineHost() (hostname string, onlyLocalhost bool) {
	if v := os.Getenv("ROS_HOSTNAME"); v != "" {
		return v, v == "localhost"
	}
	if v := os.Getenv("ROS_IP"); v != "" {
		return v, v == "::1" || strings.HasPrefix(v, "127.")
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "localhost", true
	}
	if addrs, err := net.LookupHost(host); err != nil || len(addrs) == 0 {
		return "localhost", true
	}
	return host, false
}

// nameResolver applies a node's namespace and remap table to topic/service
// names the user passes to NewPublisher/NewSubscriber/NewServiceClient/etc.
type nameResolver struct {
	namespace string
	nodeName  string
	remapping NameMap
}

func newNameResolver(namespace, nodeName string, remapping NameMap) *nameResolver {
	return &nameResolver{namespace: namespace, nodeName: nodeName, remapping: remapping}
}

// remap resolves name to its fully-qualified graph form: absolute names
// pass through unchanged, "~private" names qualify under the node's own
// name, and anything else qualifies under the node's namespace. The remap
// table is then consulted with the raw name first and the resolved name
// second; the first key that matches supplies the final name.
func (r *nameResolver) remap(name string) string {
	var resolved string
	switch {
	case strings.HasPrefix(name, "/"):
		resolved = name
	case strings.HasPrefix(name, "~"):
		resolved = r.qualify(r.nodeName) + "/" + name[1:]
	default:
		resolved = r.qualify(name)
	}
	if v, ok := r.remapping[name]; ok {
		return v
	}
	if v, ok := r.remapping[resolved]; ok {
		return v
	}
	return resolved
}

func (r *nameResolver) qualify(name string) string {
	if r.namespace == "/" {
		return "/" + name
	}
	return r.namespace + "/" + name
}
