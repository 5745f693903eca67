package domain

import "errors"

var (
	// ErrAmountOverflow is returned when a balance accumulation would wrap
	ErrAmountOverflow = errors.New("token amount overflow")

	// ErrInsufficientBalance is returned when a debit exceeds the available balance
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount is returned when a purchase or emission amount is zero
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidAddress is returned when a wallet address is not a valid hex account
	ErrInvalidAddress = errors.New("invalid wallet address")

	// ErrHolderNotFound is returned when no holder exists for an address
	ErrHolderNotFound = errors.New("token holder not found")

	// ErrNodeExists is returned when registering a franchise node id twice
	ErrNodeExists = errors.New("franchise node already exists")

	// ErrNodeNotFound is returned when a purchase references an unknown node
	ErrNodeNotFound = errors.New("franchise node not found")

	// ErrPOSNotWhitelisted is returned when a purchase arrives from an unknown POS system
	ErrPOSNotWhitelisted = errors.New("pos system not whitelisted")

	// ErrCheckNotFound is returned when no check exists for an id
	ErrCheckNotFound = errors.New("check not found")

	// ErrCheckAlreadyClaimed is returned on any claim attempt after the first successful one
	ErrCheckAlreadyClaimed = errors.New("check already claimed")

	// ErrCheckAlreadyActivated is returned when claiming a check whose account was activated
	ErrCheckAlreadyActivated = errors.New("check already activated")

	// ErrCheckExpired is returned when claiming a check past its TTL
	ErrCheckExpired = errors.New("check expired")

	// ErrInvalidActivationCode is returned on an activation code mismatch
	ErrInvalidActivationCode = errors.New("invalid activation code")

	// ErrPhoneAlreadyRegistered is returned when a phone number is registered twice
	ErrPhoneAlreadyRegistered = errors.New("phone number already registered")

	// ErrPhoneNotRegistered is returned when an operation references an unknown phone number
	ErrPhoneNotRegistered = errors.New("phone number not registered")

	// ErrPhoneNotVerified is returned when a claim is attempted before phone verification
	ErrPhoneNotVerified = errors.New("phone number not verified")

	// ErrInvalidVerificationCode is returned on a verification code mismatch
	ErrInvalidVerificationCode = errors.New("invalid verification code")

	// ErrOwnershipLimitExceeded is returned when a transfer or emission would push a
	// holder past its ownership cap
	ErrOwnershipLimitExceeded = errors.New("ownership limit exceeded")

	// ErrInsufficientStake is returned when registering a validator below the minimum stake
	ErrInsufficientStake = errors.New("stake below minimum")

	// ErrValidatorExists is returned when registering the same validator address twice
	ErrValidatorExists = errors.New("validator already registered")

	// ErrNoValidators is returned when consensus is requested with an empty registry
	ErrNoValidators = errors.New("no validators registered")

	// ErrNoPendingTransactions is returned when mining with an empty pending queue
	ErrNoPendingTransactions = errors.New("no pending transactions to mine")

	// ErrConsensusNotReached is returned when fewer than two thirds of the
	// validator set approve a candidate block
	ErrConsensusNotReached = errors.New("consensus not reached")

	// ErrInvalidBlock is returned when a candidate block fails structural validation
	ErrInvalidBlock = errors.New("invalid block")

	// ErrNothingToDistribute is returned when no expired unclaimed records exist
	ErrNothingToDistribute = errors.New("no unclaimed tokens to distribute")

	// ErrAccountNotSleeping is returned when activating an account that already left Sleep
	ErrAccountNotSleeping = errors.New("account is not in sleep status")

	// ErrAccountNotActive is returned when listing a non-active account for sale
	ErrAccountNotActive = errors.New("only active accounts can be listed for sale")
)
