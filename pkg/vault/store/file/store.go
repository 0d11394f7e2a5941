package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/vault-client/pkg/vault/store"
)

const (
	SigningKeyFileName = "payer.json"
	VaultFileName      = "vault.json"

	filePerm = 0o600
)

type fileStore struct {
	log *logrus.Entry
	dir string
}

// New returns a store.Store persisting the record as two JSON byte arrays in
// dir. The signing key is stored in cleartext.
func New(dir string) store.Store {
	return &fileStore{
		log: logrus.StandardLogger().WithField("type", "vault/store/file"),
		dir: dir,
	}
}

// Save implements store.Store.Save
//
// The vault file is removed first and written last, so an interrupted save
// leaves no record rather than a signing key paired with a stale vault.
func (s *fileStore) Save(ctx context.Context, record *store.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(err, "error creating state directory")
	}

	if err := os.Remove(s.path(VaultFileName)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "error removing previous vault file")
	}

	if err := s.writeBytes(SigningKeyFileName, record.SigningKey); err != nil {
		return errors.Wrap(err, "error writing signing key")
	}
	if err := s.writeBytes(VaultFileName, record.Vault); err != nil {
		return errors.Wrap(err, "error writing vault address")
	}

	s.log.WithFields(logrus.Fields{
		"method": "Save",
		"dir":    s.dir,
	}).Debug("persisted record")

	return nil
}

// Load implements store.Store.Load
func (s *fileStore) Load(ctx context.Context) (*store.Record, error) {
	signingKey, err := s.readBytes(SigningKeyFileName)
	if err != nil {
		return nil, err
	}

	vault, err := s.readBytes(VaultFileName)
	if err != nil {
		return nil, err
	}

	record := &store.Record{
		SigningKey: signingKey,
		Vault:      vault,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *fileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *fileStore) writeBytes(name string, value []byte) error {
	encoded, err := json.Marshal(toJSONArray(value))
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return err
	}

	return syncDir(s.dir)
}

func (s *fileStore) readBytes(name string) ([]byte, error) {
	encoded, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, store.ErrNoPersistedRecord
	} else if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", name)
	}

	var values []int
	if err := json.Unmarshal(encoded, &values); err != nil {
		return nil, errors.Wrapf(store.ErrInvalidRecord, "%s is not a json byte array: %v", name, err)
	}

	decoded, err := fromJSONArray(values)
	if err != nil {
		return nil, errors.Wrapf(store.ErrInvalidRecord, "%s: %v", name, err)
	}
	return decoded, nil
}

// toJSONArray avoids the base64 encoding encoding/json applies to []byte.
func toJSONArray(value []byte) []int {
	values := make([]int, len(value))
	for i, b := range value {
		values[i] = int(b)
	}
	return values
}

func fromJSONArray(values []int) ([]byte, error) {
	decoded := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, errors.Errorf("value %d at index %d is not a byte", v, i)
		}
		decoded[i] = byte(v)
	}
	return decoded, nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	// Not every platform supports syncing a directory.
	_ = d.Sync()
	return nil
}
