package schemafield_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/schemafield"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := schemafield.NewNotFoundError("UserInformation", nil)
		assert.Equal(t, "schemafield: UserInformation not found", err.Error())

		err = schemafield.NewNotFoundError("UserInformation", int64(7))
		assert.Equal(t, "schemafield: UserInformation not found (id=7)", err.Error())
		assert.Equal(t, int64(7), err.ID())
		assert.Equal(t, "UserInformation", err.Label())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := schemafield.NewNotFoundError("TestModel", 1)
		assert.True(t, errors.Is(err, schemafield.ErrNotFound))
		assert.True(t, schemafield.IsNotFound(fmt.Errorf("wrapper: %w", err)))
		assert.True(t, schemafield.IsNotFound(schemafield.ErrNotFound))
		assert.False(t, schemafield.IsNotFound(errors.New("other error")))
		assert.False(t, schemafield.IsNotFound(nil))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := schemafield.NewValidationError("email", errors.New("invalid format"))
		assert.Equal(t, `schemafield: validator failed for field "email": invalid format`, err.Error())
		assert.Equal(t, schemafield.CodeInvalid, err.Code)
	})

	t.Run("Message", func(t *testing.T) {
		err := &schemafield.ValidationError{
			Name:   "information",
			Code:   schemafield.CodeInvalidContent,
			Msg:    "Invalid json content: {value}",
			Params: map[string]any{"value": "'x' is not of type 'boolean'", "instance": "x"},
		}
		assert.Equal(t, "Invalid json content: 'x' is not of type 'boolean'", err.Message())
		assert.Contains(t, err.Error(), `field "information"`)

		err = &schemafield.ValidationError{Name: "f", Msg: "no params {value}"}
		assert.Equal(t, "no params {value}", err.Message())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("too short")
		err := schemafield.NewValidationError("name", underlying)
		assert.True(t, errors.Is(err, underlying))
	})

	t.Run("IsValidationError", func(t *testing.T) {
		err := schemafield.NewValidationError("age", errors.New("must be positive"))
		assert.True(t, schemafield.IsValidationError(err))
		assert.True(t, schemafield.IsValidationError(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, schemafield.IsValidationError(errors.New("other error")))
		assert.False(t, schemafield.IsValidationError(nil))
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		e1 := schemafield.NewValidationError("a", errors.New("bad a"))
		e2 := schemafield.NewValidationError("b", errors.New("bad b"))
		agg := schemafield.NewAggregateError(e1, e2)
		wrapped := schemafield.NewMutationError("TestModel", "create", agg)

		all := schemafield.ValidationErrors(wrapped)
		require.Len(t, all, 2)
		assert.Equal(t, "a", all[0].Name)
		assert.Equal(t, "b", all[1].Name)

		assert.Len(t, schemafield.ValidationErrors(e1), 1)
		assert.Nil(t, schemafield.ValidationErrors(errors.New("other")))
		assert.Nil(t, schemafield.ValidationErrors(nil))
	})
}

func TestConfigError(t *testing.T) {
	err := &schemafield.ConfigError{Name: "information", ID: "fields.E100", Msg: "missing schema"}
	assert.Equal(t, `schemafield: improperly configured field "information": missing schema`, err.Error())
	assert.True(t, schemafield.IsConfigError(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, schemafield.IsConfigError(errors.New("other error")))
	assert.False(t, schemafield.IsConfigError(nil))
}

func TestAggregateError(t *testing.T) {
	t.Run("NoErrors", func(t *testing.T) {
		assert.Nil(t, schemafield.NewAggregateError())
		assert.Nil(t, schemafield.NewAggregateError(nil, nil, nil))
	})

	t.Run("SingleError", func(t *testing.T) {
		single := errors.New("single error")
		assert.Equal(t, single, schemafield.NewAggregateError(nil, single, nil))
	})

	t.Run("MultipleErrors", func(t *testing.T) {
		err1 := errors.New("error 1")
		err2 := errors.New("error 2")
		err := schemafield.NewAggregateError(err1, err2)

		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "multiple errors")
		assert.Contains(t, err.Error(), "error 1")
		assert.Contains(t, err.Error(), "error 2")
		assert.True(t, errors.Is(err, err2))
	})
}

func TestQueryAndMutationError(t *testing.T) {
	underlying := errors.New("connection reset")

	qerr := schemafield.NewQueryError("TestModel", "select", underlying)
	assert.Equal(t, "schemafield: querying TestModel (select): connection reset", qerr.Error())
	assert.True(t, errors.Is(qerr, underlying))

	merr := schemafield.NewMutationError("TestModel", "create", underlying)
	assert.Equal(t, "schemafield: create TestModel: connection reset", merr.Error())
	assert.True(t, schemafield.IsMutationError(fmt.Errorf("wrapper: %w", merr)))
	assert.True(t, errors.Is(merr, underlying))
}
