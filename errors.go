package gtx

import (
	"fmt"

	"github.com/pkg/errors"
)

//IsNotFound returns whether the error cause is that something was not found
func IsNotFound(err error) bool {
	nfe, ok := errors.Cause(err).(NotFound)
	return ok && nfe.IsNotFound()
}

//NotFound is the interface that wraps the IsNotFound method
type NotFound interface {
	IsNotFound() bool
}

//IsInstantiation returns whether the error cause is that a type could not be instantiated
func IsInstantiation(err error) bool {
	ie, ok := errors.Cause(err).(Instantiation)
	return ok && ie.IsInstantiation()
}

//Instantiation is the interface that wraps the IsInstantiation method
type Instantiation interface {
	IsInstantiation() bool
}

//IsValidation returns whether the error cause is that the provided inputs are incorrect
func IsValidation(err error) bool {
	ve, ok := errors.Cause(err).(Validation)
	return ok && ve.IsValidation()
}

//Validation is the interface that wraps the IsValidation method
type Validation interface {
	IsValidation() bool
}

//IsTransaction returns whether the error cause is a failure of the storage while flushing or committing
func IsTransaction(err error) bool {
	te, ok := errors.Cause(err).(Transactional)
	return ok && te.IsTransaction()
}

//Transactional is the interface that wraps the IsTransaction method
type Transactional interface {
	IsTransaction() bool
}

//IsProtocolViolation returns whether the error cause is a misuse of the transaction lifecycle
func IsProtocolViolation(err error) bool {
	pe, ok := errors.Cause(err).(ProtocolViolation)
	return ok && pe.IsProtocolViolation()
}

//ProtocolViolation is the interface that wraps the IsProtocolViolation method
type ProtocolViolation interface {
	IsProtocolViolation() bool
}

//IsResourceClosed returns whether the error cause is the use of an already released resource
func IsResourceClosed(err error) bool {
	rce, ok := errors.Cause(err).(ResourceClosed)
	return ok && rce.IsResourceClosed()
}

//ResourceClosed is the interface that wraps the IsResourceClosed method
type ResourceClosed interface {
	IsResourceClosed() bool
}

type instantiationError struct {
	Type string
}

func (err instantiationError) Error() string {
	return fmt.Sprintf("cannot instantiate unknown type '%s'", err.Type)
}

func (err instantiationError) IsInstantiation() bool {
	return true
}

type validationError string

func (err validationError) Error() string {
	return string(err)
}

func (err validationError) IsValidation() bool {
	return true
}

//transactionError wraps a storage failure, reachable with Unwrap
type transactionError struct {
	op    string
	cause error
}

func (err transactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", err.op, err.cause)
}

func (err transactionError) IsTransaction() bool {
	return true
}

func (err transactionError) Unwrap() error {
	return err.cause
}

func wrapTransaction(op string, err error) error {
	if err == nil {
		return nil
	}
	return transactionError{op: op, cause: err}
}

type protocolViolation string

func (err protocolViolation) Error() string {
	return string(err)
}

func (err protocolViolation) IsProtocolViolation() bool {
	return true
}

type resourceClosed string

func (err resourceClosed) Error() string {
	return string(err)
}

func (err resourceClosed) IsResourceClosed() bool {
	return true
}

type notFoundError struct {
	Type string
}

func (err notFoundError) Error() string {
	return fmt.Sprintf("unknown collection '%s'", err.Type)
}

func (err notFoundError) IsNotFound() bool {
	return true
}
