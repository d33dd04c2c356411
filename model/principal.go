package models

type Capability string

const (
	CapViewAllOrders Capability = "orders:read-all"
	CapManageStock   Capability = "products:write"
)

// Principal is an already-authenticated caller. Capabilities are granted by the
// auth boundary; the core only checks them.
type Principal struct {
	ID           string
	Name         string
	Email        string
	Capabilities []Capability
}

func (p Principal) Can(c Capability) bool {
	for _, have := range p.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}
