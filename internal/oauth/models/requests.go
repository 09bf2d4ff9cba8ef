package models

// GrantType is a token-issuance flow variant.
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantRefreshToken      GrantType = "refresh_token"
)

// AuthorizeRequest is the query surface of GET /oauth/authorize.
type AuthorizeRequest struct {
	ClientID     string
	RedirectURI  string
	ResponseType string
	State        string
	Scope        string
}

// AuthorizeResult carries the data the login UI must echo back.
type AuthorizeResult struct {
	State    string
	ClientID string
}

// LoginRequest is the body of POST /oauth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	State    string `json:"state"`
	ClientID string `json:"client_id"`
}

// LoginResult is the redirect target carrying the issued code.
type LoginResult struct {
	RedirectURI string
	Code        string
	State       string
}

// TokenRequest is the form surface of POST /oauth/token.
type TokenRequest struct {
	GrantType    string
	Code         string
	RefreshToken string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// TokenResult is the success body of a token exchange.
type TokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// RefreshRequest is the body of POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
}

// UserInfo is the body of GET /api/user.
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}
