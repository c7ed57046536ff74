package transaction

// SignerMap assigns each distinct signer address its canonical index: the proposer first,
// then the payer, then authorizers in order, skipping addresses already seen.
// Addresses are compared after padding.
type SignerMap struct {
	addresses [][]byte
	index     map[string]uint32
}

func NewSignerMap(proposer, payer []byte, authorizers [][]byte) *SignerMap {
	m := &SignerMap{index: make(map[string]uint32, 2+len(authorizers))}
	m.add(proposer)
	m.add(payer)
	for _, a := range authorizers {
		m.add(a)
	}
	return m
}

func (m *SignerMap) add(addr []byte) {
	key := string(PadAddress(addr))
	if _, seen := m.index[key]; seen {
		return
	}
	m.index[key] = uint32(len(m.addresses))
	m.addresses = append(m.addresses, PadAddress(addr))
}

// Index returns the canonical index of addr.
func (m *SignerMap) Index(addr []byte) (uint32, bool) {
	i, ok := m.index[string(PadAddress(addr))]
	return i, ok
}

// Addresses returns the padded signer addresses in canonical order.
func (m *SignerMap) Addresses() [][]byte {
	out := make([][]byte, len(m.addresses))
	copy(out, m.addresses)
	return out
}

func (m *SignerMap) Len() int { return len(m.addresses) }
