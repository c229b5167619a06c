package address

// Protocol describes one segment type a Multiaddr can carry.
type Protocol struct {
	Name string

	// HasValue is false for the handful of protocols that are bare
	// markers with no following value segment. None of the well-known
	// protocols in this module fall into that bucket today, but the field
	// keeps the table honest about the wire format rather than assuming
	// every protocol always carries a value.
	HasValue bool
}

// Well-known protocol names, per spec.md §6.
const (
	ProtoIP4  = "ip4"
	ProtoIP6  = "ip6"
	ProtoTCP  = "tcp"
	ProtoUDP  = "udp"
	ProtoDNS  = "dns"
	ProtoDNS4 = "dns4"
	ProtoDNS6 = "dns6"
	ProtoWS   = "ws"
	ProtoWSS  = "wss"

	// ProtoP2P is the canonical identity protocol name. ProtoIPFS is the
	// legacy alias; both are parsed and normalized to ProtoP2P so that
	// "/p2p/<id>" and "/ipfs/<id>" are treated equivalently everywhere
	// downstream, per spec.md §6.
	ProtoP2P  = "p2p"
	ProtoIPFS = "ipfs"
)

var protocolTable = map[string]Protocol{
	ProtoIP4:  {Name: ProtoIP4, HasValue: true},
	ProtoIP6:  {Name: ProtoIP6, HasValue: true},
	ProtoTCP:  {Name: ProtoTCP, HasValue: true},
	ProtoUDP:  {Name: ProtoUDP, HasValue: true},
	ProtoDNS:  {Name: ProtoDNS, HasValue: true},
	ProtoDNS4: {Name: ProtoDNS4, HasValue: true},
	ProtoDNS6: {Name: ProtoDNS6, HasValue: true},
	ProtoWS:   {Name: ProtoWS, HasValue: true},
	ProtoWSS:  {Name: ProtoWSS, HasValue: true},
	ProtoP2P:  {Name: ProtoP2P, HasValue: true},
}

// LookupProtocol returns the protocol descriptor for name, normalizing the
// legacy "ipfs" alias to "p2p" first.
func LookupProtocol(name string) (Protocol, bool) {
	if name == ProtoIPFS {
		name = ProtoP2P
	}
	p, ok := protocolTable[name]
	return p, ok
}

// IsDNSProtocol reports whether name is one of the DNS segment protocols
// that Resolve expands into concrete ip4/ip6 segments.
func IsDNSProtocol(name string) bool {
	switch name {
	case ProtoDNS, ProtoDNS4, ProtoDNS6:
		return true
	default:
		return false
	}
}

// IsIdentityProtocol reports whether name (after alias normalization)
// terminates an address with a peer identity.
func IsIdentityProtocol(name string) bool {
	return name == ProtoP2P || name == ProtoIPFS
}

// normalizeProtocolName canonicalizes the legacy "ipfs" identity alias.
func normalizeProtocolName(name string) string {
	if name == ProtoIPFS {
		return ProtoP2P
	}
	return name
}
