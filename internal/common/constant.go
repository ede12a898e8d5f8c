package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the Authorization header.
const BearerPrefix = "Bearer "

// AuthTokenKey is the credential store key holding the bearer token.
const AuthTokenKey = "auth_token"

// ThemeModeKey is the credential store key holding the theme preference.
const ThemeModeKey = "theme_mode"
