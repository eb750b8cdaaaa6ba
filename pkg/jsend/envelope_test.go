package jsend

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Success(t *testing.T) {
	env, err := Decode([]byte(`{"status":"success","data":{"id":"1","name":"Widget"}}`))
	require.NoError(t, err)

	s, ok := env.(*Success)
	require.True(t, ok, "expected *Success, got %T", env)
	assert.Equal(t, StatusSuccess, s.Status())
	assert.JSONEq(t, `{"id":"1","name":"Widget"}`, string(s.Data))

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, s.Decode(&out))
	assert.Equal(t, "1", out.ID)
	assert.Equal(t, "Widget", out.Name)
}

func TestSuccess_DecodeNullLeavesTargetUntouched(t *testing.T) {
	env, err := Decode([]byte(`{"status":"success","data":null}`))
	require.NoError(t, err)

	out := []string{"keep"}
	require.NoError(t, env.(*Success).Decode(&out))
	assert.Equal(t, []string{"keep"}, out)
}

func TestSuccess_Empty(t *testing.T) {
	for body, want := range map[string]bool{
		`{"status":"success","data":null}`:    true,
		`{"status":"success"}`:                true,
		`{"status":"success","data":{}}`:      false,
		`{"status":"success","data":[]}`:      false,
		`{"status":"success","data":"value"}`: false,
	} {
		env, err := Decode([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, want, env.(*Success).Empty(), body)
	}
}

func TestDecode_FailWithFieldErrors_PreservesOrder(t *testing.T) {
	body := `{"status":"fail","data":{"errors":{"name":["Name is required"],"email":["Email must be valid","Email is taken"]}}}`
	env, err := Decode([]byte(body))
	require.NoError(t, err)

	f, ok := env.(*Fail)
	require.True(t, ok)
	require.Len(t, f.Data.Errors, 2)
	assert.Equal(t, "name", f.Data.Errors[0].Field)
	assert.Equal(t, []string{"Name is required"}, f.Data.Errors[0].Messages)
	assert.Equal(t, "email", f.Data.Errors[1].Field)
	assert.Equal(t, []string{"Email must be valid", "Email is taken"}, f.Data.Errors.Get("email"))
	assert.Empty(t, f.Data.Message)
}

func TestDecode_FailOrderIsNotAlphabetical(t *testing.T) {
	env, err := Decode([]byte(`{"status":"fail","data":{"errors":{"zeta":["z"],"alpha":["a"]}}}`))
	require.NoError(t, err)

	errs := env.(*Fail).Data.Errors
	require.Len(t, errs, 2)
	assert.Equal(t, "zeta", errs[0].Field)
	assert.Equal(t, "alpha", errs[1].Field)
}

func TestDecode_FailWithMessageAndExtra(t *testing.T) {
	env, err := Decode([]byte(`{"status":"fail","data":{"message":"Invalid request data","id":"42"}}`))
	require.NoError(t, err)

	f := env.(*Fail)
	assert.Equal(t, "Invalid request data", f.Data.Message)
	assert.Nil(t, f.Data.Errors)
	assert.JSONEq(t, `"42"`, string(f.Data.Extra["id"]))
}

func TestDecode_FailWithEmptyErrorsObject(t *testing.T) {
	env, err := Decode([]byte(`{"status":"fail","data":{"errors":{}}}`))
	require.NoError(t, err)

	errs := env.(*Fail).Data.Errors
	assert.NotNil(t, errs)
	assert.Empty(t, errs)
}

func TestDecode_FailWithoutData(t *testing.T) {
	env, err := Decode([]byte(`{"status":"fail"}`))
	require.NoError(t, err)
	assert.Equal(t, StatusFail, env.Status())
}

func TestDecode_Error(t *testing.T) {
	body := `{"status":"error","message":"Internal server error","code":5001,"data":{"timestamp":"2023-01-01T00:00:00Z","path":"/products","method":"GET"}}`
	env, err := Decode([]byte(body))
	require.NoError(t, err)

	e, ok := env.(*Error)
	require.True(t, ok)
	assert.Equal(t, "Internal server error", e.Message)
	require.NotNil(t, e.Code)
	assert.Equal(t, 5001, *e.Code)
	require.NotNil(t, e.Data)
	assert.Equal(t, "2023-01-01T00:00:00Z", e.Data.Timestamp)
	assert.Equal(t, "/products", e.Data.Path)
	assert.Equal(t, "GET", e.Data.Method)
}

func TestDecode_ErrorWithoutOptionalFields(t *testing.T) {
	env, err := Decode([]byte(`{"status":"error","message":"boom"}`))
	require.NoError(t, err)

	e := env.(*Error)
	assert.Nil(t, e.Code)
	assert.Nil(t, e.Data)
}

func TestDecode_NotAnEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"plain text", `Bad Gateway`},
		{"no status", `{"data":{}}`},
		{"unknown status", `{"status":"ok"}`},
		{"array", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotEnvelope))
		})
	}
}

func TestFieldErrors_MarshalKeepsOrder(t *testing.T) {
	fe := FieldErrors{
		{Field: "sku", Messages: []string{"SKU already exists"}},
		{Field: "name", Messages: nil},
	}
	b, err := json.Marshal(fe)
	require.NoError(t, err)
	assert.Equal(t, `{"sku":["SKU already exists"],"name":[]}`, string(b))
}

func TestWriteFail_RoundTripsThroughDecode(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteFail(rec, http.StatusConflict, FailData{
		Message: "Conflict",
		Errors:  FieldErrors{{Field: "sku", Messages: []string{"SKU already exists"}}},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	env, err := Decode(rec.Body.Bytes())
	require.NoError(t, err)
	f := env.(*Fail)
	assert.Equal(t, "Conflict", f.Data.Message)
	assert.Equal(t, []string{"SKU already exists"}, f.Data.Errors.Get("sku"))
}

func TestWriteError_OmitsEmptyOptionals(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusInternalServerError, "boom", nil, nil)

	assert.JSONEq(t, `{"status":"error","message":"boom"}`, rec.Body.String())
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, http.StatusCreated, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status":"success","data":{"id":"1"}}`, rec.Body.String())
}
