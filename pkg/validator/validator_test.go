package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type enrollmentForm struct {
	Email string `json:"email" validate:"required,email"`
	USN   string `json:"usn" validate:"required,usn"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(enrollmentForm{Email: "not-an-email", USN: "1AB21CS042"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 1)
	require.Equal(t, "email", failures[0].Field)
	require.Equal(t, "email", failures[0].Tag)
}

func TestUSNRule(t *testing.T) {
	valid := []string{"1AB21CS042", "4xy19ec001", " 2CD22IS113 "}
	for _, usn := range valid {
		require.NoError(t, ValidateStruct(enrollmentForm{Email: "a@example.edu", USN: usn}), usn)
	}

	invalid := []string{"AB21CS042", "1AB21CS42", "1AB21C0423", "12345", "1AB-21CS042"}
	for _, usn := range invalid {
		err := ValidateStruct(enrollmentForm{Email: "a@example.edu", USN: usn})
		require.Error(t, err, usn)
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "password", Tag: "min", Param: "8"},
		{Field: "usn", Tag: "usn"},
	}
	require.Equal(t, "password failed on min=8; usn failed on usn", errs.Error())
}
