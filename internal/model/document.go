package model

// Document is the entire persisted state: one JSON file, rewritten wholesale
// on every save. Each collection maps a generated id to its record.
type Document struct {
	Households        map[string]*Household        `json:"households"`
	Users             map[string]*User             `json:"users"`
	Events            map[string]*Event            `json:"events"`
	PushSubscriptions map[string]*PushSubscription `json:"pushSubscriptions"`
}

// NewDocument returns an empty initialized document.
func NewDocument() *Document {
	return &Document{
		Households:        make(map[string]*Household),
		Users:             make(map[string]*User),
		Events:            make(map[string]*Event),
		PushSubscriptions: make(map[string]*PushSubscription),
	}
}

// Init fills in nil collections after unmarshaling an older document.
func (d *Document) Init() {
	if d.Households == nil {
		d.Households = make(map[string]*Household)
	}
	if d.Users == nil {
		d.Users = make(map[string]*User)
	}
	if d.Events == nil {
		d.Events = make(map[string]*Event)
	}
	if d.PushSubscriptions == nil {
		d.PushSubscriptions = make(map[string]*PushSubscription)
	}
}

// HouseholdMembers returns the users belonging to the given household.
// Membership is derived from the user records; the household does not keep
// a redundant member list.
func (d *Document) HouseholdMembers(householdID string) []*User {
	var members []*User
	for _, u := range d.Users {
		if u.HouseholdID == householdID {
			members = append(members, u)
		}
	}
	return members
}

// AdminCount returns the number of admins in the given household.
func (d *Document) AdminCount(householdID string) int {
	n := 0
	for _, u := range d.Users {
		if u.HouseholdID == householdID && u.IsAdmin {
			n++
		}
	}
	return n
}
