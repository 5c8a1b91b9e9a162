package model

type RegistrationStatus string

const (
	RegistrationStatusCreated   RegistrationStatus = "CREATED"
	RegistrationStatusValidated RegistrationStatus = "VALIDATED"
	RegistrationStatusError     RegistrationStatus = "ERROR"
)

// CardRegistration mirrors the provider-side record for one tokenization
// attempt. Field names and JSON keys follow the MangoPay wire format.
type CardRegistration struct {
	ID                  string             `json:"Id"`
	UserID              string             `json:"UserId"`
	Currency            string             `json:"Currency"`
	CardType            string             `json:"CardType"`
	AccessKey           string             `json:"AccessKey"`
	PreregistrationData string             `json:"PreregistrationData"`
	CardRegistrationURL string             `json:"CardRegistrationURL"`
	RegistrationData    string             `json:"RegistrationData,omitempty"`
	CardID              string             `json:"CardId,omitempty"`
	Status              RegistrationStatus `json:"Status,omitempty"`
	ResultCode          string             `json:"ResultCode,omitempty"`
}

// Validated reports whether the provider finalized tokenization: a card id
// must be assigned and the status must read VALIDATED.
func (c *CardRegistration) Validated() bool {
	return c != nil && c.CardID != "" && c.Status == RegistrationStatusValidated
}
