package common

// AuthorizationHeaderName carries the session token on protected requests,
// in the form "Bearer <token>".
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authorization scheme accepted by the session middleware.
const BearerScheme = "Bearer"
