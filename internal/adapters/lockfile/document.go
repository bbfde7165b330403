// Package lockfile reads and writes the package-lock.json document that pins
// every resolved package of a workspace.
package lockfile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	keyVersion   = "ivpm_lock_version"
	keyGenerated = "generated"
	keyPackages  = "packages"
	keySHA256    = "sha256"
)

// canonical renders v with sorted keys and a two-space indent. Numbers keep
// their textual form so that a read followed by a write is byte-stable.
func canonical(v any) ([]byte, error) {
	raw, err := encode(v, "")
	if err != nil {
		return nil, err
	}

	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	return encode(generic, "  ")
}

func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// checksum is the hex SHA-256 of the canonical body without the sha256 key.
func checksum(body map[string]any) (string, error) {
	data, err := canonical(body)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// body builds the document of lock without its checksum.
func body(lock *domain.Lock) map[string]any {
	doc := make(map[string]any, len(lock.Contributions)+3)
	for k, v := range lock.Contributions {
		doc[k] = v
	}
	packages := lock.Packages
	if packages == nil {
		packages = map[string]domain.LockEntry{}
	}
	doc[keyVersion] = lock.Version
	doc[keyGenerated] = lock.Generated.UTC().Format(time.RFC3339)
	doc[keyPackages] = packages
	return doc
}

// render produces the file content of lock and stores the fresh checksum on it.
func render(lock *domain.Lock) ([]byte, error) {
	doc := body(lock)
	sum, err := checksum(doc)
	if err != nil {
		return nil, errors.Join(domain.ErrLockWriteFailed, err)
	}
	doc[keySHA256] = sum

	data, err := canonical(doc)
	if err != nil {
		return nil, errors.Join(domain.ErrLockWriteFailed, err)
	}
	lock.SHA256 = sum
	lock.ChecksumValid = true
	return append(data, '\n'), nil
}

// parse decodes a lock document. The checksum is verified but a mismatch is
// only recorded on the result.
func parse(data []byte) (*domain.Lock, error) {
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Join(domain.ErrLockParseFailed, err)
	}
	if doc == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrLockParseFailed, ""), "reason", "document is not an object")
	}

	version, err := readVersion(doc[keyVersion])
	if err != nil {
		return nil, err
	}

	lock := &domain.Lock{Version: version, Contributions: make(map[string]any)}

	if s, ok := doc[keySHA256].(string); ok {
		lock.SHA256 = s
	}
	delete(doc, keySHA256)
	sum, err := checksum(doc)
	if err != nil {
		return nil, errors.Join(domain.ErrLockParseFailed, err)
	}
	lock.ChecksumValid = sum == lock.SHA256

	if s, ok := doc[keyGenerated].(string); ok && s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrLockParseFailed, ""), keyGenerated, s)
		}
		lock.Generated = ts.UTC()
	}

	var typed struct {
		Packages map[string]domain.LockEntry `json:"packages"`
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, errors.Join(domain.ErrLockParseFailed, err)
	}
	lock.Packages = typed.Packages
	if lock.Packages == nil {
		lock.Packages = make(map[string]domain.LockEntry)
	}

	for k, v := range doc {
		switch k {
		case keyVersion, keyGenerated, keyPackages:
		default:
			lock.Contributions[k] = v
		}
	}
	return lock, nil
}

func readVersion(v any) (int, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, zerr.With(zerr.Wrap(domain.ErrUnknownLockVersion, ""), "version", v)
	}
	i, err := n.Int64()
	if err != nil || i != domain.LockVersion {
		return 0, zerr.With(zerr.Wrap(domain.ErrUnknownLockVersion, ""), "version", n.String())
	}
	return int(i), nil
}
