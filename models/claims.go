package models

// DownloadClaims are the JWT claims embedded in signed download links issued
// by the local storage backend. The object key is the storage-relative path
// of the rendered file.
type DownloadClaims struct {
	Issuer    string `json:"iss"`
	Subject   string `json:"sub,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	ObjectKey string `json:"key"`
}
