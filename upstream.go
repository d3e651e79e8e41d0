package proxysdk

// Upstream is a reference to an upstream cluster. In Envoy this may be a
// plain cluster name or an encoded protobuf selector; the dispatcher treats
// it as opaque bytes.
type Upstream []byte

// UpstreamName references a cluster by name.
func UpstreamName(name string) Upstream {
	return Upstream(name)
}
