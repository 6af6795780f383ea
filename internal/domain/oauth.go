package domain

// ProviderLink is one configured OAuth provider's static credentials plus,
// once the authorization-code exchange has completed, the tokens obtained
// from the provider. One record exists per provider name.
type ProviderLink struct {
	ID           string   `json:"id,omitempty" bson:"id,omitempty"`
	Name         string   `json:"name" bson:"name"`
	ClientID     string   `json:"client_id" bson:"client_id"`
	ClientSecret string   `json:"-" bson:"client_secret"`
	Scopes       []string `json:"scope" bson:"scope"`
	APIKey       string   `json:"-" bson:"api_key"`
	AccessToken  string   `json:"-" bson:"access_token,omitempty"`
	RefreshToken string   `json:"-" bson:"refresh_token,omitempty"`
	AuthURL      string   `json:"auth_url" bson:"auth_url"`
	TokenURL     string   `json:"token_url" bson:"token_url"`
	SendEndpoint string   `json:"send_endpoint,omitempty" bson:"send_endpoint,omitempty"`
}

// Linked reports whether provider tokens have been obtained and persisted.
func (l *ProviderLink) Linked() bool {
	return l != nil && l.AccessToken != ""
}
