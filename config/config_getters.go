package config

import (
	"strconv"
	"time"
)

func (b BaseConfig) GetServer() Server {
	return b.Server
}

func (b BaseConfig) GetAuth() Auth {
	return b.Auth
}

func (b BaseConfig) GetPersistence() Persistence {
	return b.Persistence
}

func (s Server) GetAddress() string {
	return ":" + strconv.Itoa(s.Port)
}

func (a Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a Auth) GetPreviousSigningKeys() []string {
	return a.PreviousSigningKeys
}

func (a Auth) GetIssuer() string {
	return a.Issuer
}

func (a Auth) GetTokenExpiration() time.Duration {
	return a.TokenExpiration
}

func (a Auth) GetContextKey() string {
	return a.ContextKey
}

func (a Auth) GetTokenLookup() string {
	return a.TokenLookup
}

func (a Auth) GetAuthScheme() string {
	return a.AuthScheme
}

func (a Auth) GetPasswordCost() int {
	return a.PasswordCost
}
