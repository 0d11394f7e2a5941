package vault

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"strconv"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/vault-client/pkg/metrics"
	"github.com/code-payments/vault-client/pkg/solana"
	vault_program "github.com/code-payments/vault-client/pkg/solana/vault"
	"github.com/code-payments/vault-client/pkg/solana/system"
	"github.com/code-payments/vault-client/pkg/vault/store"
)

const (
	workflowInitialize = "initialize"
	workflowWithdraw   = "withdraw"
)

type InitializeResult struct {
	Payer              ed25519.PublicKey
	Vault              ed25519.PublicKey
	Bump               uint8
	RentExemptLamports uint64
	DepositLamports    uint64
	Signature          solana.Signature
}

type WithdrawResult struct {
	Payer     ed25519.PublicKey
	Vault     ed25519.PublicKey
	Lamports  uint64
	Signature solana.Signature
}

// Client drives the initialize and withdraw workflows against a Gateway,
// carrying state between runs through a store.Store.
type Client struct {
	log  *logrus.Entry
	conf *conf

	gateway   Gateway
	records   store.Store
	labels    *AddressLabels
	assembler *Assembler

	program    ed25519.PublicKey
	commitment solana.Commitment

	entropy io.Reader
}

func NewClient(ctx context.Context, gateway Gateway, records store.Store, labels *AddressLabels, configProvider ConfigProvider) (*Client, error) {
	conf := configProvider()

	program, commitment, err := conf.programAndCommitment(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	labels.Add(LabelVaultProgram, program)
	labels.Add(LabelSystemProgram, vault_program.SYSTEM_PROGRAM_ID)

	return &Client{
		log:        logrus.StandardLogger().WithField("type", "vault/client"),
		conf:       conf,
		gateway:    gateway,
		records:    records,
		labels:     labels,
		assembler:  NewAssembler(program),
		program:    program,
		commitment: commitment,
		entropy:    rand.Reader,
	}, nil
}

// ParseArgs validates the positional arguments. No arguments selects
// Initialize, reported with withdraw false. A single non-negative integer
// selects Withdraw of that many lamports. Anything else returns
// ErrInvalidArguments.
func ParseArgs(args []string) (lamports uint64, withdraw bool, err error) {
	switch len(args) {
	case 0:
		return 0, false, nil
	case 1:
		lamports, err = strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return 0, false, errors.Wrapf(ErrInvalidArguments, "lamports must be a non-negative integer: %q", args[0])
		}
		return lamports, true, nil
	default:
		return 0, false, errors.Wrapf(ErrInvalidArguments, "expected at most 1 argument, got %d", len(args))
	}
}

// Run selects a workflow from the positional arguments as ParseArgs does.
func (c *Client) Run(ctx context.Context, args []string) error {
	lamports, withdraw, err := ParseArgs(args)
	if err != nil {
		return err
	}

	if !withdraw {
		_, err = c.Initialize(ctx)
		return err
	}

	_, err = c.Withdraw(ctx, lamports)
	return err
}

// Initialize creates a fresh payer, creates its vault and persists both for
// later withdrawals. Nothing is persisted unless the transaction confirms.
func (c *Client) Initialize(ctx context.Context) (result *InitializeResult, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Initialize")
	defer tracer.End()

	start := time.Now()
	defer func() {
		tracer.OnError(err)
		recordWorkflowEvent(ctx, workflowInitialize, start, err)
	}()

	payer, signingKey, err := ed25519.GenerateKey(c.entropy)
	if err != nil {
		return nil, errors.Wrap(err, "error generating payer")
	}
	c.labels.Add(LabelPayer, payer)

	log := c.log.WithFields(logrus.Fields{
		"method": "Initialize",
		"payer":  base58.Encode(payer),
	})

	if !c.conf.disableFunding.Get(ctx) {
		fundingLamports := c.conf.fundingLamports.Get(ctx)
		log.WithField("lamports", fundingLamports).Debug("requesting funding")

		if err := c.gateway.RequestFunding(ctx, payer, fundingLamports); err != nil {
			log.WithError(err).Warn("funding request failed")
			return nil, err
		}
	}

	vault, bump, err := vault_program.GetVaultAddress(c.program, &vault_program.GetVaultAddressArgs{
		Payer: payer,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving vault address")
	}
	c.labels.Add(LabelVault, vault)

	tracer.AddAttributes(map[string]interface{}{
		"payer": base58.Encode(payer),
		"vault": base58.Encode(vault),
	})

	log = log.WithFields(logrus.Fields{
		"vault": base58.Encode(vault),
		"bump":  bump,
	})

	rentExemptLamports, err := c.gateway.MinimumRentExemptBalance(ctx, vault_program.VaultAccountSize)
	if err != nil {
		return nil, errors.Wrap(err, "error getting rent exempt balance")
	}

	instructions := []solana.Instruction{
		vault_program.NewInitializeInstruction(
			c.program,
			&vault_program.InitializeInstructionAccounts{
				Payer: payer,
				Vault: vault,
			},
			&vault_program.InitializeInstruction{
				Bump:               bump,
				RentExemptLamports: rentExemptLamports,
			},
		),
	}

	depositLamports := c.conf.initialDepositLamports.Get(ctx)
	if depositLamports > 0 {
		instructions = append(instructions, system.Transfer(payer, vault, depositLamports))
	}

	sig, err := c.submit(ctx, workflowInitialize, log, signingKey, instructions...)
	if err != nil {
		return nil, err
	}

	if err := c.verifyVault(ctx, payer, vault); err != nil {
		log.WithError(err).Warn("confirmed vault failed verification")
		return nil, err
	}

	record := &store.Record{
		SigningKey: signingKey,
		Vault:      vault,
	}
	if err := c.records.Save(ctx, record); err != nil {
		log.WithError(err).Warn("failure persisting record for confirmed vault")
		return nil, errors.Wrap(err, "error persisting record")
	}

	log.WithFields(c.labels.Fields()).Info("vault initialized")

	return &InitializeResult{
		Payer:              payer,
		Vault:              vault,
		Bump:               bump,
		RentExemptLamports: rentExemptLamports,
		DepositLamports:    depositLamports,
		Signature:          sig,
	}, nil
}

// Withdraw moves lamports from the persisted vault back to its payer. The
// vault address comes from the persisted record and is never re-derived.
//
// Returns store.ErrNoPersistedRecord, without contacting the gateway, if no
// vault has been initialized.
func (c *Client) Withdraw(ctx context.Context, lamports uint64) (result *WithdrawResult, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Withdraw")
	defer tracer.End()
	tracer.AddAttribute("lamports", lamports)

	start := time.Now()
	defer func() {
		tracer.OnError(err)
		recordWorkflowEvent(ctx, workflowWithdraw, start, err)
	}()

	record, err := c.records.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error loading record")
	}

	payer := record.Payer()
	c.labels.Add(LabelPayer, payer)
	c.labels.Add(LabelVault, record.Vault)

	log := c.log.WithFields(logrus.Fields{
		"method":   "Withdraw",
		"payer":    base58.Encode(payer),
		"vault":    base58.Encode(record.Vault),
		"lamports": lamports,
	})

	instruction := vault_program.NewWithdrawInstruction(
		c.program,
		&vault_program.WithdrawInstructionAccounts{
			Payer: payer,
			Vault: record.Vault,
		},
		&vault_program.WithdrawInstruction{
			Lamports: lamports,
		},
	)

	sig, err := c.submit(ctx, workflowWithdraw, log, record.SigningKey, instruction)
	if err != nil {
		return nil, err
	}

	log.Info("withdrawal confirmed")

	return &WithdrawResult{
		Payer:     payer,
		Vault:     record.Vault,
		Lamports:  lamports,
		Signature: sig,
	}, nil
}

func (c *Client) submit(ctx context.Context, workflow string, log *logrus.Entry, signingKey ed25519.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	start := time.Now()

	blockhash, err := c.gateway.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "error getting latest blockhash")
	}

	payer := signingKey.Public().(ed25519.PublicKey)
	txn, err := c.assembler.Assemble(payer, blockhash, instructions...)
	if err != nil {
		return solana.Signature{}, err
	}

	if err := txn.Sign(signingKey); err != nil {
		return solana.Signature{}, errors.Wrap(ErrAssembly, err.Error())
	}
	if !txn.IsFullySigned() {
		return solana.Signature{}, errors.Wrap(ErrAssembly, "transaction requires signatures beyond the payer")
	}

	sig, err := c.gateway.Submit(ctx, txn)
	if err != nil {
		log.WithError(err).Warn("transaction submission failed")
		return solana.Signature{}, err
	}

	log = log.WithField("signature", base58.Encode(sig[:]))
	log.Debug("transaction submitted")

	confirmCtx := ctx
	if timeout := c.conf.confirmationTimeout.Get(ctx); timeout > 0 {
		var cancel context.CancelFunc
		confirmCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := c.gateway.Confirm(confirmCtx, sig, c.commitment); err != nil {
		log.WithError(err).Warn("transaction did not confirm")
		return solana.Signature{}, err
	}

	recordSubmissionEvent(ctx, workflow, start, base58.Encode(sig[:]))

	return sig, nil
}

// verifyVault checks that the vault exists, is owned by the program and names
// payer as its authority.
func (c *Client) verifyVault(ctx context.Context, payer, vault ed25519.PublicKey) error {
	info, err := c.gateway.GetAccountInfo(ctx, vault, c.commitment)
	if errors.Is(err, solana.ErrNoAccountInfo) {
		return errors.Wrap(ErrVaultMismatch, "vault account not found")
	} else if err != nil {
		return errors.Wrap(err, "error getting vault account")
	}

	if !bytes.Equal(info.Owner, c.program) {
		return errors.Wrapf(ErrVaultMismatch, "vault owned by %s", base58.Encode(info.Owner))
	}

	var state vault_program.VaultAccount
	if err := state.Unmarshal(info.Data); err != nil {
		return errors.Wrap(ErrVaultMismatch, err.Error())
	}
	if !bytes.Equal(state.Authority, payer) {
		return errors.Wrapf(ErrVaultMismatch, "vault authority is %s", base58.Encode(state.Authority))
	}

	return nil
}
