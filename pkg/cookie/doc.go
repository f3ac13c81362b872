// Package cookie reads and writes HTTP cookies that are plain or encrypted.
//
// A Manager is built from one or more secrets. The first secret writes, and
// every secret is tried on read so keys can be rotated without logging users
// out. The AES-GCM key is derived from each secret with HKDF.
//
//	m, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")}, cookie.WithSecure(true))
//	if err != nil {
//		return err
//	}
//	_ = m.SetEncrypted(w, "sid", token)
//	token, err := m.GetEncrypted(r, "sid")
//
// Errors are sentinel values (ErrCookieNotFound, ErrDecryptionFailed, ...)
// and should be matched with errors.Is.
package cookie
