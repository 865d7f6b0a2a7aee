package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/Raisondetr3/todo-service/internal/repository"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies a ServiceError independently of the transport.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindDuplicate
	KindValidation
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	case KindValidation:
		return "validation"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

type ServiceError struct {
	Kind    Kind              `json:"kind"`
	Code    codes.Code        `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Time    time.Time         `json:"time"`
	Err     error             `json:"-"`
}

func NewServiceError(kind Kind, code codes.Code, message string) *ServiceError {
	return &ServiceError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Time:    time.Now(),
	}
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("code: %s, message: %s, time: %s",
		e.Code.String(), e.Message, e.Time.Format(time.RFC3339))
	if e.Err != nil {
		msg += ", cause: " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches any ServiceError of the same kind, so errors.Is(err, ErrTaskNotFound)
// holds for every not-found error regardless of its message.
func (e *ServiceError) Is(target error) bool {
	var t *ServiceError
	if !stderrors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Expected reports whether the error is a client mistake rather than a fault.
func (e *ServiceError) Expected() bool {
	return e.Kind != KindInternal
}

func (e *ServiceError) ToGRPCStatus() error {
	st := status.New(e.Code, e.Message)
	if len(e.Fields) == 0 {
		return st.Err()
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	violations := make([]*errdetails.BadRequest_FieldViolation, 0, len(names))
	for _, name := range names {
		violations = append(violations, &errdetails.BadRequest_FieldViolation{
			Field:       name,
			Description: e.Fields[name],
		})
	}

	detailed, err := st.WithDetails(&errdetails.BadRequest{FieldViolations: violations})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

var (
	ErrTaskNotFound      = NewServiceError(KindNotFound, codes.NotFound, "task not found")
	ErrTaskAlreadyExists = NewServiceError(KindDuplicate, codes.AlreadyExists, "task already exists")
	ErrValidation        = NewServiceError(KindValidation, codes.InvalidArgument, "Invalid request data")
	ErrBadRequest        = NewServiceError(KindBadRequest, codes.InvalidArgument, "bad request")
	ErrInternalError     = NewServiceError(KindInternal, codes.Internal, "An unexpected error occurred")
)

func TaskNotFound(id int64) *ServiceError {
	return NewServiceError(KindNotFound, codes.NotFound, fmt.Sprintf("Task with id %d not found", id))
}

func DuplicateTitle(title string) *ServiceError {
	return NewServiceError(KindDuplicate, codes.AlreadyExists, fmt.Sprintf("Task with title '%s' already exists", title))
}

// Validation carries one message per offending field, keyed by its wire name.
func Validation(fields map[string]string) *ServiceError {
	e := NewServiceError(KindValidation, codes.InvalidArgument, "Invalid request data")
	e.Fields = fields
	return e
}

func BadRequest(message string) *ServiceError {
	return NewServiceError(KindBadRequest, codes.InvalidArgument, message)
}

func Internal(err error) *ServiceError {
	e := NewServiceError(KindInternal, codes.Internal, "An unexpected error occurred")
	e.Err = err
	return e
}

// WrapRepositoryError maps a store failure for the task identified by id and
// title onto the service taxonomy. Errors that already are ServiceErrors pass
// through unchanged.
func WrapRepositoryError(err error, id int64, title string) *ServiceError {
	if err == nil {
		return nil
	}

	var serviceErr *ServiceError
	if stderrors.As(err, &serviceErr) {
		return serviceErr
	}

	switch {
	case repository.IsNotFoundError(err):
		e := TaskNotFound(id)
		e.Err = err
		return e
	case repository.IsDuplicateError(err):
		e := DuplicateTitle(title)
		e.Err = err
		return e
	default:
		return Internal(err)
	}
}

func IsNotFoundError(err error) bool {
	return stderrors.Is(err, ErrTaskNotFound)
}

func IsDuplicateError(err error) bool {
	return stderrors.Is(err, ErrTaskAlreadyExists)
}

func IsValidationError(err error) bool {
	return stderrors.Is(err, ErrValidation)
}

// As extracts the ServiceError from err, treating anything else as internal.
func As(err error) *ServiceError {
	if err == nil {
		return nil
	}
	var serviceErr *ServiceError
	if stderrors.As(err, &serviceErr) {
		return serviceErr
	}
	return Internal(err)
}
