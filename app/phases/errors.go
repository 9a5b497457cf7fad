package phases

import "errors"

var (
	// ErrInvalidInput marks malformed or empty upstream data, e.g. an empty
	// task or an empty approach set handed to the Reflector.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInferenceUnavailable marks a failed, timed-out or unusable response
	// from the external inference capability.
	ErrInferenceUnavailable = errors.New("inference unavailable")

	// ErrContractViolation marks a phase output that breaks an invariant
	// established by an earlier phase, e.g. the Reflector scoring an approach
	// the Generator never produced.
	ErrContractViolation = errors.New("phase contract violation")
)
