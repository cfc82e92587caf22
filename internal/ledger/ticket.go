package ledger

import (
	"strings"
	"time"

	"github.com/Rus1K7/Airport/internal/simerr"
)

// MenuType is the meal a passenger ordered.
type MenuType string

const (
	MenuMeat    MenuType = "meat"
	MenuChicken MenuType = "chicken"
	MenuFish    MenuType = "fish"
	MenuVegan   MenuType = "vegan"
)

// MenuTypes lists the menu in rotation order.
var MenuTypes = []MenuType{MenuMeat, MenuChicken, MenuFish, MenuVegan}

// ParseMenuType accepts a menu type in any letter case.
func ParseMenuType(s string) (MenuType, error) {
	m := MenuType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range MenuTypes {
		if m == known {
			return m, nil
		}
	}
	return "", simerr.New(simerr.ErrInvalidMenu, "unknown menu type %q", s)
}

// Next returns the menu type following m in rotation.
func (m MenuType) Next() MenuType {
	for i, known := range MenuTypes {
		if known == m {
			return MenuTypes[(i+1)%len(MenuTypes)]
		}
	}
	return MenuTypes[0]
}

const (
	MinBaggage = 0
	MaxBaggage = 20
)

// ValidateBaggage checks that weight is within the allowance in kg.
func ValidateBaggage(weight int) error {
	if weight < MinBaggage || weight > MaxBaggage {
		return simerr.New(simerr.ErrInvalidBaggage, "baggage weight %d kg is outside %d..%d", weight, MinBaggage, MaxBaggage)
	}
	return nil
}

// TicketStatus is active until the ticket is refunded.
type TicketStatus string

const (
	TicketActive   TicketStatus = "active"
	TicketReturned TicketStatus = "returned"
)

// Pool names the seat pool a ticket was drawn from.
type Pool string

const (
	PoolGeneral Pool = "general"
	PoolVIP     Pool = "vip"
)

// Ticket is a snapshot of a ledger entry. Forged copies produced for
// fraud scenarios carry Forged and never exist in the ledger.
type Ticket struct {
	ID            string
	PassengerID   string
	PassengerName string
	FlightID      string
	PurchasedAt   time.Time
	ReturnedAt    time.Time
	BaggageWeight int
	MenuType      MenuType
	IsVIP         bool
	Pool          Pool
	Status        TicketStatus
	Forged        bool
}

// Active reports whether the ticket still holds a seat.
func (t Ticket) Active() bool {
	return t.Status == TicketActive
}
