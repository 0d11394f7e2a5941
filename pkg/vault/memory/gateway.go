package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/vault-client/pkg/solana"
	"github.com/code-payments/vault-client/pkg/solana/system"
	vault_program "github.com/code-payments/vault-client/pkg/solana/vault"
	"github.com/code-payments/vault-client/pkg/vault"
)

const (
	DefaultRentExemptLamports = 1_113_600
)

var (
	errFundingDisabled    = errors.New("funding disabled")
	errSignatureNotFound  = errors.New("signature not found")
	errGatewayUnavailable = errors.New("gateway unavailable")
)

type account struct {
	owner ed25519.PublicKey
	data  []byte
}

type ledger struct {
	balances map[string]uint64
	accounts map[string]*account
}

func (l *ledger) clone() *ledger {
	cloned := &ledger{
		balances: make(map[string]uint64, len(l.balances)),
		accounts: make(map[string]*account, len(l.accounts)),
	}
	for k, v := range l.balances {
		cloned.balances[k] = v
	}
	for k, v := range l.accounts {
		cloned.accounts[k] = &account{
			owner: append(ed25519.PublicKey(nil), v.owner...),
			data:  append([]byte(nil), v.data...),
		}
	}
	return cloned
}

// Gateway is an in-memory vault.Gateway that executes the vault program and
// system transfers against a local ledger. Transactions apply atomically: a
// failing instruction leaves the ledger untouched.
type Gateway struct {
	mu sync.Mutex

	program ed25519.PublicKey

	ledger     *ledger
	blockhash  solana.Blockhash
	signatures map[solana.Signature]struct{}

	rentExemptLamports uint64
	fundingDisabled    bool
	dropConfirmations  bool
	unavailable        bool

	submissions  int
	fundingCalls int
}

func NewGateway(program ed25519.PublicKey) *Gateway {
	g := &Gateway{
		program: program,
	}
	g.Reset()
	return g
}

// Reset clears the ledger and all counters.
func (g *Gateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ledger = &ledger{
		balances: make(map[string]uint64),
		accounts: make(map[string]*account),
	}
	g.blockhash = sha256.Sum256([]byte("genesis"))
	g.signatures = make(map[solana.Signature]struct{})
	g.rentExemptLamports = DefaultRentExemptLamports
	g.fundingDisabled = false
	g.dropConfirmations = false
	g.unavailable = false
	g.submissions = 0
	g.fundingCalls = 0
}

func (g *Gateway) SetRentExemptLamports(lamports uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rentExemptLamports = lamports
}

// SetFundingDisabled makes RequestFunding fail as a faucet outage would.
func (g *Gateway) SetFundingDisabled(disabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fundingDisabled = disabled
}

// SetDropConfirmations accepts submissions without ever executing them, so
// Confirm times out.
func (g *Gateway) SetDropConfirmations(drop bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dropConfirmations = drop
}

// SetUnavailable makes every read fail.
func (g *Gateway) SetUnavailable(unavailable bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unavailable = unavailable
}

// Credit adds lamports to address outside of any transaction.
func (g *Gateway) Credit(address ed25519.PublicKey, lamports uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ledger.balances[string(address)] += lamports
}

func (g *Gateway) Balance(address ed25519.PublicKey) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ledger.balances[string(address)]
}

// Account returns the owner and data of a program owned account.
func (g *Gateway) Account(address ed25519.PublicKey) (owner ed25519.PublicKey, data []byte, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.ledger.accounts[string(address)]
	if !ok {
		return nil, nil, false
	}
	return append(ed25519.PublicKey(nil), a.owner...), append([]byte(nil), a.data...), true
}

// Submissions returns the number of Submit calls, including rejected ones.
func (g *Gateway) Submissions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submissions
}

func (g *Gateway) FundingCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fundingCalls
}

// LatestBlockhash implements vault.Gateway.LatestBlockhash
func (g *Gateway) LatestBlockhash(_ context.Context) (solana.Blockhash, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.unavailable {
		return solana.Blockhash{}, errGatewayUnavailable
	}
	return g.blockhash, nil
}

// MinimumRentExemptBalance implements vault.Gateway.MinimumRentExemptBalance
func (g *Gateway) MinimumRentExemptBalance(_ context.Context, _ uint64) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.unavailable {
		return 0, errGatewayUnavailable
	}
	return g.rentExemptLamports, nil
}

// RequestFunding implements vault.Gateway.RequestFunding
func (g *Gateway) RequestFunding(_ context.Context, address ed25519.PublicKey, lamports uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.fundingCalls++

	if g.fundingDisabled {
		return vault.NewFundingUnavailableError(errFundingDisabled)
	}

	g.ledger.balances[string(address)] += lamports
	return nil
}

// Submit implements vault.Gateway.Submit
func (g *Gateway) Submit(_ context.Context, txn solana.Transaction) (solana.Signature, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.submissions++

	if len(txn.Signatures) == 0 {
		return solana.Signature{}, vault.NewSubmitRejectedError(solana.NewTransactionError(solana.TransactionErrorSignatureFailure))
	}
	sig := txn.Signatures[0]

	if err := txn.VerifySignatures(); err != nil {
		return sig, vault.NewSubmitRejectedError(solana.NewTransactionError(solana.TransactionErrorSignatureFailure))
	}
	if txn.Message.RecentBlockhash != g.blockhash {
		return sig, vault.NewSubmitRejectedError(solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound))
	}

	if g.dropConfirmations {
		return sig, nil
	}

	next := g.ledger.clone()
	for i := range txn.Message.Instructions {
		if txErr := g.execute(next, txn.Message, i); txErr != nil {
			return sig, vault.NewSubmitRejectedError(txErr)
		}
	}

	g.ledger = next
	g.signatures[sig] = struct{}{}
	g.blockhash = sha256.Sum256(sig[:])

	return sig, nil
}

// Confirm implements vault.Gateway.Confirm
func (g *Gateway) Confirm(ctx context.Context, sig solana.Signature, _ solana.Commitment) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return vault.NewConfirmationTimeoutError(err)
	}
	if _, ok := g.signatures[sig]; !ok {
		return vault.NewConfirmationTimeoutError(errors.Wrap(errSignatureNotFound, base58.Encode(sig[:])))
	}
	return nil
}

// GetAccountInfo implements vault.Gateway.GetAccountInfo
func (g *Gateway) GetAccountInfo(_ context.Context, address ed25519.PublicKey, _ solana.Commitment) (*solana.AccountInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.unavailable {
		return nil, errGatewayUnavailable
	}

	a, ok := g.ledger.accounts[string(address)]
	if !ok {
		return nil, solana.ErrNoAccountInfo
	}

	return &solana.AccountInfo{
		Data:     append([]byte(nil), a.data...),
		Owner:    append(ed25519.PublicKey(nil), a.owner...),
		Lamports: g.ledger.balances[string(address)],
	}, nil
}

func (g *Gateway) execute(l *ledger, m solana.Message, index int) *solana.TransactionError {
	compiled := m.Instructions[index]
	if int(compiled.ProgramIndex) >= len(m.Accounts) {
		return solana.NewInstructionError(index, solana.InstructionErrorUnsupportedProgramID)
	}
	program := m.Accounts[compiled.ProgramIndex]

	switch {
	case bytes.Equal(program, system.ProgramKey[:]):
		return executeTransfer(l, m, index)
	case bytes.Equal(program, g.program):
		return g.executeVault(l, m, index)
	default:
		return solana.NewInstructionError(index, solana.InstructionErrorUnsupportedProgramID)
	}
}

func executeTransfer(l *ledger, m solana.Message, index int) *solana.TransactionError {
	transfer, err := system.DecompileTransfer(m, index)
	if err != nil {
		return solana.NewInstructionError(index, solana.InstructionErrorInvalidInstructionData)
	}

	senderIndex := m.Instructions[index].Accounts[0]
	if !m.IsSigner(int(senderIndex)) {
		return solana.NewInstructionError(index, solana.InstructionErrorMissingRequiredSignature)
	}

	if l.balances[string(transfer.Sender)] < transfer.Lamports {
		return solana.NewInstructionError(index, solana.InstructionErrorInsufficientFunds)
	}

	l.balances[string(transfer.Sender)] -= transfer.Lamports
	l.balances[string(transfer.Receiver)] += transfer.Lamports
	return nil
}

func (g *Gateway) executeVault(l *ledger, m solana.Message, index int) *solana.TransactionError {
	decompiled, err := vault_program.DecompileInstruction(m, index, g.program)
	switch {
	case errors.Is(err, vault_program.ErrMalformedInstruction):
		return solana.NewInstructionError(index, solana.InstructionErrorInvalidInstructionData)
	case errors.Is(err, vault_program.ErrInvalidInstructionRole):
		return solana.NewInstructionError(index, solana.InstructionErrorInvalidAccountData)
	case err != nil:
		return solana.NewInstructionError(index, solana.InstructionErrorGenericError)
	}

	switch payload := decompiled.Payload.(type) {
	case vault_program.InitializeInstruction:
		return g.executeInitialize(l, index, decompiled, payload)
	case vault_program.WithdrawInstruction:
		return g.executeWithdraw(l, index, decompiled, payload)
	default:
		return solana.NewInstructionError(index, solana.InstructionErrorInvalidInstructionData)
	}
}

func (g *Gateway) executeInitialize(l *ledger, index int, ix *vault_program.DecompiledInstruction, payload vault_program.InitializeInstruction) *solana.TransactionError {
	payer, vaultAddress := ix.Payer(), ix.Vault()

	expected, err := vault_program.CreateVaultAddress(g.program, payer, payload.Bump)
	if err != nil || !bytes.Equal(expected, vaultAddress) {
		return solana.NewInstructionError(index, solana.InstructionErrorInvalidSeeds)
	}

	if _, ok := l.accounts[string(vaultAddress)]; ok || l.balances[string(vaultAddress)] > 0 {
		return solana.NewInstructionError(index, solana.InstructionErrorAccountAlreadyInitialized)
	}

	if l.balances[string(payer)] < payload.RentExemptLamports {
		return solana.NewInstructionError(index, solana.InstructionErrorInsufficientFunds)
	}

	state := vault_program.VaultAccount{Authority: payer}
	l.accounts[string(vaultAddress)] = &account{
		owner: append(ed25519.PublicKey(nil), g.program...),
		data:  state.Marshal(),
	}
	l.balances[string(payer)] -= payload.RentExemptLamports
	l.balances[string(vaultAddress)] += payload.RentExemptLamports

	return nil
}

func (g *Gateway) executeWithdraw(l *ledger, index int, ix *vault_program.DecompiledInstruction, payload vault_program.WithdrawInstruction) *solana.TransactionError {
	payer, vaultAddress := ix.Payer(), ix.Vault()

	a, ok := l.accounts[string(vaultAddress)]
	if !ok || !bytes.Equal(a.owner, g.program) {
		return solana.NewInstructionError(index, solana.InstructionErrorIllegalOwner)
	}

	var state vault_program.VaultAccount
	if err := state.Unmarshal(a.data); err != nil {
		return solana.NewInstructionError(index, solana.InstructionErrorInvalidAccountData)
	}
	if !bytes.Equal(state.Authority, payer) {
		return solana.NewInstructionError(index, solana.InstructionErrorIllegalOwner)
	}

	if payload.Lamports > l.balances[string(vaultAddress)] {
		return solana.NewInstructionError(index, solana.InstructionErrorInsufficientFunds)
	}

	l.balances[string(vaultAddress)] -= payload.Lamports
	l.balances[string(payer)] += payload.Lamports

	return nil
}
