// Package remote implements metadata.Client against a metadata server over
// HTTP. Requests are rate limited, retried with exponential backoff when the
// failure is transient, and guarded by a circuit breaker.
package remote

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ajitpratap0/metactx/pkg/api"
	"github.com/ajitpratap0/metactx/pkg/clients"
	"github.com/ajitpratap0/metactx/pkg/config"
	"github.com/ajitpratap0/metactx/pkg/json"
	"github.com/ajitpratap0/metactx/pkg/logger"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/metrics"
	"github.com/ajitpratap0/metactx/pkg/observability"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"go.uber.org/zap"
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport built from the configuration.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records requests in the collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// Client is the remote metadata.Client.
type Client struct {
	baseURL    string
	serverName string

	http    *http.Client
	limiter *clients.RateLimiter
	retry   *clients.RetryPolicy
	breaker *clients.CircuitBreaker
	metrics *metrics.Collector
	logger  *zap.Logger
}

var _ metadata.Client = (*Client)(nil)

// New creates a client for the server described by cfg.
func New(ctx context.Context, cfg config.RemoteConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		return nil, omerrors.New(omerrors.ErrorTypeConfig, "remote.base_url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConfig, "invalid remote.base_url")
	}
	if cfg.ServerName == "" {
		return nil, omerrors.New(omerrors.ErrorTypeConfig, "remote.server_name is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serverName: cfg.ServerName,
		limiter:    clients.NewRateLimiter(cfg.RateLimitPerSec, cfg.RateBurst),
		retry:      clients.NewRetryPolicy(cfg.RetryAttempts, cfg.RetryDelay, cfg.MaxRetryDelay),
		metrics:    metrics.Default(),
		logger:     logger.With(zap.String("component", "remote_client"), zap.String("server", cfg.ServerName)),
	}
	c.retry.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.logger.Debug("Retrying remote call",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	}
	if cfg.CircuitBreaker {
		c.breaker = clients.NewCircuitBreaker(clients.BreakerConfig{
			Name:             cfg.ServerName,
			FailureThreshold: cfg.FailureThreshold,
			SuccessThreshold: cfg.SuccessThreshold,
			Timeout:          cfg.BreakerTimeout,
			ShouldTrip:       shouldTrip,
			OnStateChange: func(_, to clients.CircuitState) {
				c.metrics.SetBreakerState(c.serverName, int(to))
			},
		}, logger)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		hc := clients.DefaultHTTPConfig()
		hc.EnableHTTP2 = cfg.EnableHTTP2
		if cfg.Timeout > 0 {
			hc.RequestTimeout = cfg.Timeout
		}
		hc.BearerToken = cfg.Token
		hc.ClientID = cfg.OAuth2.ClientID
		hc.ClientSecret = cfg.OAuth2.ClientSecret
		hc.TokenURL = cfg.OAuth2.TokenURL
		hc.Scopes = cfg.OAuth2.Scopes
		c.http = clients.NewHTTPClient(ctx, hc, logger)
	}
	return c, nil
}

// shouldTrip counts server and transport failures, not caller mistakes.
func shouldTrip(err error) bool {
	return !omerrors.IsInvalidParameter(err) && !omerrors.IsUserNotAuthorized(err)
}

func (c *Client) endpoint(userID, path string) string {
	return c.baseURL + "/servers/" + url.PathEscape(c.serverName) + "/users/" + url.PathEscape(userID) + "/" + path
}

// call posts body to path and decodes the answer into out. Failures reach
// the caller as invalid parameter, property server or user not authorized
// errors.
func (c *Client) call(ctx context.Context, operation, userID, path string, body, out interface{}) error {
	if userID == "" {
		return omerrors.UserNotAuthorized(userID, "no user identifier supplied")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return omerrors.InvalidParameter("body", "failed to encode request: "+err.Error())
	}
	target := c.endpoint(userID, path)

	attempt := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return omerrors.Wrap(err, omerrors.ErrorTypeTimeout, "rate limiter wait cancelled")
		}
		if c.breaker == nil {
			return c.do(ctx, operation, target, payload, out)
		}
		return c.breaker.Execute(func() error {
			return c.do(ctx, operation, target, payload, out)
		})
	}

	err = c.retry.Execute(ctx, attempt)
	if err != nil {
		c.logger.Debug("Remote call failed",
			zap.String("operation", operation),
			zap.String("user_id", userID),
			zap.Error(err))
	}
	return fold(err)
}

func (c *Client) do(ctx context.Context, operation, target string, payload []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	observability.InjectHeaders(ctx, req.Header)
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set(logger.RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordRemoteRequest(operation, 0)
		if ctx.Err() != nil {
			return omerrors.Wrap(err, omerrors.ErrorTypeTimeout, "request cancelled")
		}
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to make request")
	}
	defer resp.Body.Close()
	c.metrics.RecordRemoteRequest(operation, resp.StatusCode)

	data, err := api.ReadBody(resp.Body)
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to read response")
	}
	if resp.StatusCode != http.StatusOK {
		err := api.DecodeError(resp.StatusCode, data)
		var e *omerrors.Error
		if wait := retryAfter(resp.Header); wait > 0 && errors.As(err, &e) {
			e.WithDetail(clients.RetryAfterDetail, wait)
		}
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return omerrors.PropertyServer(err, "failed to decode response")
	}
	return nil
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// fold maps transport failures onto the three propagated kinds.
func fold(err error) error {
	if err == nil {
		return nil
	}
	switch omerrors.TypeOf(err) {
	case omerrors.ErrorTypeInvalidParameter, omerrors.ErrorTypeUserNotAuthorized, omerrors.ErrorTypePropertyServer:
		return err
	case omerrors.ErrorTypeNotFound:
		return omerrors.Wrap(err, omerrors.ErrorTypeInvalidParameter, "unknown object")
	default:
		return omerrors.PropertyServer(err, "metadata server unavailable")
	}
}

// BreakerState reports the circuit breaker state, or closed when there is
// no breaker.
func (c *Client) BreakerState() clients.CircuitState {
	if c.breaker == nil {
		return clients.StateClosed
	}
	return c.breaker.State()
}

func (c *Client) CreateElement(ctx context.Context, userID, typeName string, opts metadata.NewElementOptions, properties metadata.Properties) (string, error) {
	var resp api.GUIDResponse
	err := c.call(ctx, "createElement", userID, "elements",
		api.CreateElementRequest{TypeName: typeName, Options: opts, Properties: properties}, &resp)
	return resp.GUID, err
}

func (c *Client) CreateElementFromTemplate(ctx context.Context, userID, typeName string, opts metadata.TemplateOptions, templateGUID string,
	replacementProperties metadata.Properties, placeholderProperties map[string]string) (string, error) {
	var resp api.GUIDResponse
	err := c.call(ctx, "createElementFromTemplate", userID, "elements/from-template", api.TemplateRequest{
		TypeName:              typeName,
		Options:               opts,
		TemplateGUID:          templateGUID,
		ReplacementProperties: replacementProperties,
		PlaceholderProperties: placeholderProperties,
	}, &resp)
	return resp.GUID, err
}

func (c *Client) UpdateElement(ctx context.Context, userID, guid string, opts metadata.UpdateOptions, properties metadata.Properties) error {
	return c.call(ctx, "updateElement", userID, "elements/"+url.PathEscape(guid)+"/update",
		api.UpdateRequest{Options: opts, Properties: properties}, nil)
}

func (c *Client) UpdateElementStatus(ctx context.Context, userID, guid string, opts metadata.UpdateOptions, status metadata.ElementStatus) error {
	return c.call(ctx, "updateElementStatus", userID, "elements/"+url.PathEscape(guid)+"/status",
		api.StatusRequest{Options: opts, Status: status}, nil)
}

func (c *Client) DeleteElement(ctx context.Context, userID, guid string, opts metadata.DeleteOptions) error {
	return c.call(ctx, "deleteElement", userID, "elements/"+url.PathEscape(guid)+"/delete",
		api.DeleteRequest{Options: opts}, nil)
}

func (c *Client) GetElementByGUID(ctx context.Context, userID, guid string, opts metadata.QueryOptions) (*metadata.Element, error) {
	var resp api.ElementResponse
	if err := c.call(ctx, "getElementByGUID", userID, "elements/"+url.PathEscape(guid)+"/retrieve",
		api.QueryRequest{Options: opts}, &resp); err != nil {
		return nil, err
	}
	return resp.Element, nil
}

func (c *Client) GetElementsByPropertyValue(ctx context.Context, userID, value string, propertyNames []string, opts metadata.QueryOptions) ([]*metadata.Element, error) {
	var resp api.ElementsResponse
	err := c.call(ctx, "getElementsByPropertyValue", userID, "elements/by-property-value",
		api.PropertyValueRequest{Value: value, PropertyNames: propertyNames, Options: opts}, &resp)
	return resp.Elements, err
}

func (c *Client) FindElementsByPropertyValue(ctx context.Context, userID, searchString string, propertyNames []string, opts metadata.SearchOptions) ([]*metadata.Element, error) {
	var resp api.ElementsResponse
	err := c.call(ctx, "findElementsByPropertyValue", userID, "elements/by-search-string",
		api.SearchRequest{SearchString: searchString, PropertyNames: propertyNames, Options: opts}, &resp)
	return resp.Elements, err
}

func (c *Client) FindElements(ctx context.Context, userID, searchString string, opts metadata.SearchOptions) ([]*metadata.Element, error) {
	var resp api.ElementsResponse
	err := c.call(ctx, "findElements", userID, "elements/find",
		api.SearchRequest{SearchString: searchString, Options: opts}, &resp)
	return resp.Elements, err
}

func (c *Client) GetElementsByClassification(ctx context.Context, userID, classificationName string, opts metadata.QueryOptions) ([]*metadata.Element, error) {
	var resp api.ElementsResponse
	err := c.call(ctx, "getElementsByClassification", userID, "classifications/"+url.PathEscape(classificationName)+"/elements",
		api.QueryRequest{Options: opts}, &resp)
	return resp.Elements, err
}

func (c *Client) CreateRelationship(ctx context.Context, userID, typeName, end1GUID, end2GUID string, opts metadata.MetadataSourceOptions, properties metadata.Properties) (string, error) {
	var resp api.GUIDResponse
	err := c.call(ctx, "createRelationship", userID, "relationships", api.RelationshipRequest{
		TypeName:   typeName,
		End1GUID:   end1GUID,
		End2GUID:   end2GUID,
		Options:    opts,
		Properties: properties,
	}, &resp)
	return resp.GUID, err
}

func (c *Client) UpdateRelationship(ctx context.Context, userID, relationshipGUID string, opts metadata.UpdateOptions, properties metadata.Properties) error {
	return c.call(ctx, "updateRelationship", userID, "relationships/"+url.PathEscape(relationshipGUID)+"/update",
		api.UpdateRequest{Options: opts, Properties: properties}, nil)
}

func (c *Client) DeleteRelationship(ctx context.Context, userID, relationshipGUID string, opts metadata.MetadataSourceOptions) error {
	return c.call(ctx, "deleteRelationship", userID, "relationships/"+url.PathEscape(relationshipGUID)+"/delete",
		api.SourceRequest{Options: opts}, nil)
}

func (c *Client) DetachElements(ctx context.Context, userID, typeName, end1GUID, end2GUID string, opts metadata.MetadataSourceOptions) error {
	return c.call(ctx, "detachElements", userID, "relationships/detach", api.RelationshipRequest{
		TypeName: typeName,
		End1GUID: end1GUID,
		End2GUID: end2GUID,
		Options:  opts,
	}, nil)
}

func (c *Client) GetRelationshipByGUID(ctx context.Context, userID, relationshipGUID string, opts metadata.QueryOptions) (*metadata.Relationship, error) {
	var resp api.RelationshipResponse
	if err := c.call(ctx, "getRelationshipByGUID", userID, "relationships/"+url.PathEscape(relationshipGUID)+"/retrieve",
		api.QueryRequest{Options: opts}, &resp); err != nil {
		return nil, err
	}
	return resp.Relationship, nil
}

func (c *Client) GetRelatedElements(ctx context.Context, userID, guid, relationshipTypeName string, startingAtEnd metadata.End, opts metadata.QueryOptions) ([]*metadata.RelatedElement, error) {
	var resp api.RelatedResponse
	err := c.call(ctx, "getRelatedElements", userID, "elements/"+url.PathEscape(guid)+"/related", api.RelatedRequest{
		RelationshipTypeName: relationshipTypeName,
		StartingAtEnd:        startingAtEnd,
		Options:              opts,
	}, &resp)
	return resp.RelatedElements, err
}

func (c *Client) Classify(ctx context.Context, userID, guid, classificationName string, opts metadata.MetadataSourceOptions, properties metadata.Properties) error {
	return c.call(ctx, "classify", userID, "elements/"+url.PathEscape(guid)+"/classifications/"+url.PathEscape(classificationName),
		api.ClassifyRequest{Options: opts, Properties: properties}, nil)
}

func (c *Client) Declassify(ctx context.Context, userID, guid, classificationName string, opts metadata.MetadataSourceOptions) error {
	return c.call(ctx, "declassify", userID, "elements/"+url.PathEscape(guid)+"/classifications/"+url.PathEscape(classificationName)+"/delete",
		api.SourceRequest{Options: opts}, nil)
}
