package entity

// TokenPair is the login response of the auth endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
