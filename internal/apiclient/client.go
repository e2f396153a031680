package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ngprojetos/inscricao-eventos/internal/logging"
	"github.com/ngprojetos/inscricao-eventos/internal/models"
	"github.com/ngprojetos/inscricao-eventos/internal/observability"
	"github.com/ngprojetos/inscricao-eventos/internal/utils"
	"github.com/ngprojetos/inscricao-eventos/internal/utils/httpclient"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "registration_api"

// Endpoint labels used in metrics, spans and errors
const (
	EndpointPing                  = "ping"
	EndpointRegister              = "register"
	EndpointAreas                 = "areas"
	EndpointSetores               = "setores"
	EndpointCompleteRegistration  = "complete_registration"
	EndpointRegistrations         = "registrations"
	EndpointDetailedRegistrations = "detailed_registrations"
)

// Client talks to the external registration API. Requests are not retried.
type Client struct {
	http    *resty.Client
	baseURL string
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	rc := resty.NewWithClient(httpclient.New(timeout)).
		SetBaseURL(baseURL).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{http: rc, baseURL: baseURL}
}

// BaseURL returns the API root the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes one request and returns the body of a 2xx answer
func (c *Client) do(ctx context.Context, endpoint, method, path string, body interface{}, query map[string]string) ([]byte, error) {
	ctx, span := utils.TraceExternalService(ctx, serviceName, endpoint)
	defer span.End()

	logger := logging.Logger.With(
		zap.String("endpoint", endpoint),
		zap.String("method", method),
	)

	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	observability.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.APIRequests.WithLabelValues(endpoint, "unreachable").Inc()
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"endpoint": endpoint})
		logger.Warn("registration API unreachable", zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", models.ErrUnreachable, endpoint, err)
	}

	utils.AddSpanAttribute(span, "http.status_code", resp.StatusCode())

	if !resp.IsSuccess() {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: errorMessage(resp.Body())}
		observability.APIRequests.WithLabelValues(endpoint, "error").Inc()
		utils.RecordErrorInSpan(span, apiErr, map[string]interface{}{"endpoint": endpoint})
		logger.Warn("registration API returned an error",
			zap.Int("status_code", apiErr.StatusCode),
			zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	observability.APIRequests.WithLabelValues(endpoint, "success").Inc()
	logger.Debug("registration API call succeeded",
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)))
	return resp.Body(), nil
}

// Ping checks that the API answers
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, EndpointPing, http.MethodGet, "/api/ping", nil, nil)
	return err
}

// Register sends the initial registration
func (c *Client) Register(ctx context.Context, draft models.RegistrationDraft) error {
	_, err := c.do(ctx, EndpointRegister, http.MethodPost, "/api/register", draft, nil)
	return err
}

// CompleteRegistration sends the normalized completion form
func (c *Client) CompleteRegistration(ctx context.Context, payload models.CompletionPayload) error {
	_, err := c.do(ctx, EndpointCompleteRegistration, http.MethodPost, "/api/complete-registration", payload, nil)
	return err
}

// Areas fetches the area-of-practice choices
func (c *Client) Areas(ctx context.Context) ([]string, error) {
	return c.stringList(ctx, EndpointAreas, "/api/areas")
}

// Setores fetches the work-sector choices
func (c *Client) Setores(ctx context.Context) ([]string, error) {
	return c.stringList(ctx, EndpointSetores, "/api/setores")
}

func (c *Client) stringList(ctx context.Context, endpoint, path string) ([]string, error) {
	body, err := c.do(ctx, endpoint, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeStringList(endpoint, body)
}

// decodeStringList accepts only a JSON array whose items are all strings
func decodeStringList(endpoint string, body []byte) ([]string, error) {
	var items []interface{}
	if err := json.Unmarshal(body, &items); err != nil || items == nil {
		reason := "expected a JSON array"
		if err != nil {
			reason = fmt.Sprintf("expected a JSON array: %v", err)
		}
		return nil, &MalformedResponseError{Endpoint: endpoint, Reason: reason, Err: models.ErrMalformedReferenceList}
	}

	list := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &MalformedResponseError{
				Endpoint: endpoint,
				Reason:   fmt.Sprintf("item %d is %T, expected a string", i, item),
				Err:      models.ErrMalformedReferenceList,
			}
		}
		list = append(list, s)
	}
	return list, nil
}

// FetchReferenceLists fetches areas and setores concurrently. Each fetch fails
// independently: the lists hold whatever succeeded and the error joins the failures.
func (c *Client) FetchReferenceLists(ctx context.Context) (models.ReferenceLists, error) {
	var (
		lists      models.ReferenceLists
		areasErr   error
		setoresErr error
		g          errgroup.Group
	)

	g.Go(func() error {
		lists.Areas, areasErr = c.Areas(ctx)
		return nil
	})
	g.Go(func() error {
		lists.Setores, setoresErr = c.Setores(ctx)
		return nil
	})
	_ = g.Wait()

	if err := errors.Join(areasErr, setoresErr); err != nil {
		logging.Logger.Warn("reference lists partially unavailable",
			zap.Bool("areas_ok", areasErr == nil),
			zap.Bool("setores_ok", setoresErr == nil),
			zap.Error(err))
		return lists, err
	}
	return lists, nil
}

// Registrations fetches the registrations listing. The API may answer with a
// {registrations, count} object or with a bare array.
func (c *Client) Registrations(ctx context.Context, filter models.RegistrationFilter) (*models.RegistrationList, error) {
	var query map[string]string
	if filter.Confirmed != nil {
		query = map[string]string{"confirmed": strconv.FormatBool(*filter.Confirmed)}
	}

	body, err := c.do(ctx, EndpointRegistrations, http.MethodGet, "/api/registrations", nil, query)
	if err != nil {
		return nil, err
	}
	return decodeRegistrationList(body)
}

func decodeRegistrationList(body []byte) (*models.RegistrationList, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &MalformedResponseError{Endpoint: EndpointRegistrations, Reason: "empty body", Err: models.ErrMalformedResponse}
	}

	switch trimmed[0] {
	case '[':
		var records []models.RegistrationRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, &MalformedResponseError{Endpoint: EndpointRegistrations, Reason: err.Error(), Err: models.ErrMalformedResponse}
		}
		return &models.RegistrationList{Registrations: records, Count: len(records)}, nil
	case '{':
		var list models.RegistrationList
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, &MalformedResponseError{Endpoint: EndpointRegistrations, Reason: err.Error(), Err: models.ErrMalformedResponse}
		}
		if list.Registrations == nil {
			list.Registrations = []models.RegistrationRecord{}
		}
		if list.Count == 0 {
			list.Count = len(list.Registrations)
		}
		return &list, nil
	default:
		return nil, &MalformedResponseError{
			Endpoint: EndpointRegistrations,
			Reason:   "expected a JSON object or array",
			Err:      models.ErrMalformedResponse,
		}
	}
}

// DetailedRegistrations fetches the completed registration forms
func (c *Client) DetailedRegistrations(ctx context.Context) ([]models.DetailedRegistrationRecord, error) {
	body, err := c.do(ctx, EndpointDetailedRegistrations, http.MethodGet, "/api/detailed_registrations", nil, nil)
	if err != nil {
		return nil, err
	}

	var records []models.DetailedRegistrationRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &MalformedResponseError{Endpoint: EndpointDetailedRegistrations, Reason: err.Error(), Err: models.ErrMalformedResponse}
	}
	if records == nil {
		records = []models.DetailedRegistrationRecord{}
	}
	return records, nil
}
