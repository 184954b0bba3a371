package types

// AddressSnapshot is the frozen copy of a shipping address stored on an
// order at checkout. It never changes after the order is placed, even if
// the buyer later edits or deletes the address it was taken from.
type AddressSnapshot struct {
	Name         string `json:"name"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PinCode      string `json:"pinCode"`
}
