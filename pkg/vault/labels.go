package vault

import (
	"crypto/ed25519"
	"sort"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
)

const (
	LabelPayer         = "payer"
	LabelVault         = "vault"
	LabelVaultProgram  = "vault_program"
	LabelSystemProgram = "system_program"
)

// AddressLabels maps human readable labels to addresses for diagnostics. It
// is passed explicitly to whatever needs to describe an address.
type AddressLabels struct {
	mu        sync.RWMutex
	byLabel   map[string]ed25519.PublicKey
	byAddress map[string]string
}

func NewAddressLabels() *AddressLabels {
	return &AddressLabels{
		byLabel:   make(map[string]ed25519.PublicKey),
		byAddress: make(map[string]string),
	}
}

// Add associates label with address, replacing any previous address for the
// label.
func (l *AddressLabels) Add(label string, address ed25519.PublicKey) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if previous, ok := l.byLabel[label]; ok {
		delete(l.byAddress, base58.Encode(previous))
	}

	l.byLabel[label] = append(ed25519.PublicKey(nil), address...)
	l.byAddress[base58.Encode(address)] = label
}

func (l *AddressLabels) Resolve(label string) (ed25519.PublicKey, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	address, ok := l.byLabel[label]
	return address, ok
}

func (l *AddressLabels) Label(address ed25519.PublicKey) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	label, ok := l.byAddress[base58.Encode(address)]
	return label, ok
}

// Describe renders address with its label when one is known.
func (l *AddressLabels) Describe(address ed25519.PublicKey) string {
	encoded := base58.Encode(address)
	if label, ok := l.Label(address); ok {
		return label + " (" + encoded + ")"
	}
	return encoded
}

// Labels returns the known labels in sorted order.
func (l *AddressLabels) Labels() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	labels := make([]string, 0, len(l.byLabel))
	for label := range l.byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Fields returns every label with its base58 address for structured logging.
func (l *AddressLabels) Fields() logrus.Fields {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fields := make(logrus.Fields, len(l.byLabel))
	for label, address := range l.byLabel {
		fields[label] = base58.Encode(address)
	}
	return fields
}
