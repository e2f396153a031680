package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ngprojetos/inscricao-eventos/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, 2*time.Second), server
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestRegister(t *testing.T) {
	var received map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/register", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		writeJSON(w, http.StatusCreated, `{"message": "Inscrição realizada com sucesso!"}`)
	})

	err := client.Register(context.Background(), models.RegistrationDraft{
		Name:      "Ana Souza",
		Email:     "ana@example.test",
		Phone:     "(11) 98765-4321",
		Confirmed: true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"name":      "Ana Souza",
		"email":     "ana@example.test",
		"phone":     "(11) 98765-4321",
		"confirmed": true,
	}, received)
}

func TestRegister_APIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "error field", status: http.StatusBadRequest, body: `{"error": "Email já cadastrado."}`, wantMessage: "Email já cadastrado."},
		{name: "no error field", status: http.StatusInternalServerError, body: `{"detail": "boom"}`, wantMessage: ""},
		{name: "non json body", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantMessage: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			err := client.Register(context.Background(), models.RegistrationDraft{Name: "Ana"})
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.False(t, errors.Is(err, models.ErrUnreachable))
		})
	}
}

func TestRegister_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := New(url, time.Second)
	err := client.Register(context.Background(), models.RegistrationDraft{Name: "Ana"})

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnreachable)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestRegister_NoRetry(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusServiceUnavailable, `{"error": "indisponível"}`)
	})

	require.Error(t, client.Register(context.Background(), models.RegistrationDraft{Name: "Ana"}))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCompleteRegistration(t *testing.T) {
	var received map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/complete-registration", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		writeJSON(w, http.StatusCreated, `{"message": "ok"}`)
	})

	err := client.CompleteRegistration(context.Background(), models.CompletionPayload{
		RegistrationEmail:    "ana@example.test",
		CPF:                  "12345678901",
		Cidade:               "Vila Nova",
		CidadeOutra:          "Vila Nova",
		ConfirmacaoDetalhada: models.ConfirmacaoConfirmo,
		AceiteLGPD:           true,
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.test", received["registration_email"])
	assert.Equal(t, "12345678901", received["cpf"])
	assert.Equal(t, "Vila Nova", received["cidade"])
	assert.Equal(t, true, received["aceite_lgpd"])
	assert.Equal(t, false, received["aceite_comunicados"])
}

func TestPing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ping", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"status": "ok"}`)
	})
	assert.NoError(t, client.Ping(context.Background()))
}

func TestAreasAndSetores(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/areas":
			writeJSON(w, http.StatusOK, `["Gestão", "Hospitalar", "Outra"]`)
		case "/api/setores":
			writeJSON(w, http.StatusOK, `[]`)
		default:
			http.NotFound(w, r)
		}
	})

	areas, err := client.Areas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Gestão", "Hospitalar", "Outra"}, areas)

	setores, err := client.Setores(context.Background())
	require.NoError(t, err)
	assert.Empty(t, setores)
	assert.NotNil(t, setores)
}

func TestDecodeStringList_Malformed(t *testing.T) {
	bodies := []string{
		`{"areas": ["Gestão"]}`,
		`null`,
		`"Gestão"`,
		`["Gestão", 3]`,
		`[null]`,
		`not json`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			_, err := decodeStringList(EndpointAreas, []byte(body))
			require.Error(t, err)

			var malformed *MalformedResponseError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, EndpointAreas, malformed.Endpoint)
			assert.ErrorIs(t, err, models.ErrMalformedReferenceList)
		})
	}
}

func TestFetchReferenceLists(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/areas":
			writeJSON(w, http.StatusOK, `["Gestão", "Outra"]`)
		case "/api/setores":
			writeJSON(w, http.StatusOK, `["TI", "Outra"]`)
		}
	})

	lists, err := client.FetchReferenceLists(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Gestão", "Outra"}, lists.Areas)
	assert.Equal(t, []string{"TI", "Outra"}, lists.Setores)
}

func TestFetchReferenceLists_IndependentFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/areas":
			writeJSON(w, http.StatusOK, `{"unexpected": true}`)
		case "/api/setores":
			writeJSON(w, http.StatusOK, `["TI", "Outra"]`)
		}
	})

	lists, err := client.FetchReferenceLists(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMalformedReferenceList)
	assert.Nil(t, lists.Areas)
	assert.Equal(t, []string{"TI", "Outra"}, lists.Setores)
}

func TestFetchReferenceLists_RunsConcurrently(t *testing.T) {
	var inFlight, peak int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(100 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		writeJSON(w, http.StatusOK, `["x"]`)
	})

	_, err := client.FetchReferenceLists(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&peak))
}

func TestRegistrations(t *testing.T) {
	tests := []struct {
		name      string
		filter    models.RegistrationFilter
		wantQuery string
		body      string
		wantCount int
		wantNames []string
	}{
		{
			name:      "bare array",
			body:      `[{"id": 2, "name": "Bruno", "email": "b@example.test", "phone": "(18) 3621-0000", "confirmed": false, "timestamp": "Fri, 12 Sep 2025 14:03:00 GMT"}, {"id": 1, "name": "Ana", "email": "a@example.test", "phone": null, "confirmed": true, "timestamp": "2025-09-11T10:00:00"}]`,
			wantCount: 2,
			wantNames: []string{"Bruno", "Ana"},
		},
		{
			name:      "object with count",
			filter:    models.RegistrationFilter{Confirmed: boolPtr(true)},
			wantQuery: "confirmed=true",
			body:      `{"registrations": [{"id": 1, "name": "Ana", "confirmed": true}], "count": 1}`,
			wantCount: 1,
			wantNames: []string{"Ana"},
		},
		{
			name:      "unconfirmed filter with empty array",
			filter:    models.RegistrationFilter{Confirmed: boolPtr(false)},
			wantQuery: "confirmed=false",
			body:      `[]`,
			wantCount: 0,
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/registrations", r.URL.Path)
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
				writeJSON(w, http.StatusOK, tt.body)
			})

			list, err := client.Registrations(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, list.Count)

			names := []string{}
			for _, record := range list.Registrations {
				names = append(names, record.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestRegistrations_Timestamps(t *testing.T) {
	list, err := decodeRegistrationList([]byte(`[{"id": 1, "timestamp": "Fri, 12 Sep 2025 14:03:00 GMT"}]`))
	require.NoError(t, err)

	ts := list.Registrations[0].Timestamp
	assert.Equal(t, 2025, ts.Year())
	assert.Equal(t, time.September, ts.Month())
	assert.Equal(t, 14, ts.Hour())
}

func TestRegistrations_Malformed(t *testing.T) {
	for _, body := range []string{``, `"x"`, `{"registrations": "nope"}`, `[{"timestamp": "ontem"}]`} {
		_, err := decodeRegistrationList([]byte(body))
		require.Error(t, err, body)
		assert.ErrorIs(t, err, models.ErrMalformedResponse, body)
	}
}

func TestDetailedRegistrations(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/detailed_registrations", r.URL.Path)
		writeJSON(w, http.StatusOK, `[{"id": 1, "registration_email": "a@example.test", "cpf": "12345678901", "cidade": "Birigui", "aceite_lgpd": true, "timestamp": "Fri, 12 Sep 2025 14:03:00 GMT"}]`)
	})

	records, err := client.DetailedRegistrations(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Birigui", records[0].Cidade)
	assert.True(t, records[0].AceiteLGPD)
}

func TestDetailedRegistrations_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error": "Ocorreu um erro no servidor."}`)
	})

	_, err := client.DetailedRegistrations(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Ocorreu um erro no servidor.", apiErr.Message)
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "registration API returned status 500", (&APIError{StatusCode: 500}).Error())
	assert.Equal(t, "registration API returned status 400: inválido", (&APIError{StatusCode: 400, Message: "inválido"}).Error())
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5000", New("http://localhost:5000", time.Second).BaseURL())
}

func boolPtr(b bool) *bool {
	return &b
}
