package domain

// Provider identifies how an identity was authenticated.
type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

// KnownProvider reports whether p is one of the supported providers.
func KnownProvider(p Provider) bool {
	switch p {
	case ProviderLocal, ProviderGoogle, ProviderFacebook:
		return true
	}
	return false
}

// Identity is the backend's view of the signed-in user. Refreshed whenever a
// new TokenPair is issued.
type Identity struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Username  string   `json:"username"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Avatar    string   `json:"avatar,omitempty"`
	Roles     []string `json:"roles"`
	Provider  Provider `json:"provider"`
}

// DisplayName returns a human readable name for the identity.
func (i Identity) DisplayName() string {
	switch {
	case i.FirstName != "" && i.LastName != "":
		return i.FirstName + " " + i.LastName
	case i.FirstName != "":
		return i.FirstName
	case i.Username != "":
		return i.Username
	}
	return i.Email
}

// OAuthProfile is the third-party profile handed to the OAuth bridge.
type OAuthProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}
