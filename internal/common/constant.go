package common

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "mb_token"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6
