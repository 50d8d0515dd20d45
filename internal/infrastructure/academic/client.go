package academic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/ummobile/ummobile-services/api/internal/questionnaire/application"
	"github.com/ummobile/ummobile-services/api/internal/questionnaire/domain"
)

// Client talks to the academic records backend. Every call first obtains a
// short-lived session token from /login; the upstream does not accept the
// mobile app's own bearer tokens.
type Client struct {
	httpClient *http.Client
	logger     *log.Logger
	baseURL    string
	user       string
	password   string
	periodID   string
}

// Config defines dependencies and credentials for the academic client.
type Config struct {
	HTTPClient *http.Client
	Logger     *log.Logger
	BaseURL    string
	User       string
	Password   string
	PeriodID   string
}

// NewClient builds an academic gateway client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		logger:     cfg.Logger,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		user:       cfg.User,
		password:   cfg.Password,
		periodID:   cfg.PeriodID,
	}
}

var _ application.AcademicGateway = (*Client)(nil)

// covidReturnPayload mirrors the untyped field names of /datosDeRetorno.
type covidReturnPayload struct {
	ArrivalDate   string `json:"fechaLlegada"`
	Vaccinated    string `json:"vacuna"`
	PositiveCovid string `json:"positivoCovid"`
	PositiveDate  string `json:"fechaPositivo"`
	Suspect       string `json:"sospechoso"`
	SuspectDate   string `json:"fechaSospechoso"`
	Quarantine    string `json:"aislamiento"`
	QuarantineEnd string `json:"finAislamiento"`
}

type academicProfilePayload struct {
	Residence string `json:"residencia"`
}

// CovidInformation fetches and reshapes the user's declaration snapshot.
func (c *Client) CovidInformation(ctx context.Context, userID string) (domain.CovidInformation, error) {
	query := url.Values{}
	query.Set("CodigoAlumno", userID)
	query.Set("PeriodoId", c.periodID)

	var payload covidReturnPayload
	if err := c.getJSON(ctx, "/datosDeRetorno", query, &payload); err != nil {
		return domain.CovidInformation{}, err
	}

	return domain.CovidInformation{
		ArrivalDate:        parseDate(payload.ArrivalDate),
		IsVaccinated:       parseFlag(payload.Vaccinated),
		HaveCovid:          parseFlag(payload.PositiveCovid),
		StartCovidDate:     parseDate(payload.PositiveDate),
		IsSuspect:          parseFlag(payload.Suspect),
		StartSuspicionDate: parseDate(payload.SuspectDate),
		IsInQuarantine:     parseFlag(payload.Quarantine),
		QuarantineEndDate:  parseDate(payload.QuarantineEnd),
	}, nil
}

// HasResponsiveLetter reports whether the user has the signed letter on
// file. The upstream answers with a bare "S" or "N" body.
func (c *Client) HasResponsiveLetter(ctx context.Context, userID string) (bool, error) {
	query := url.Values{}
	query.Set("CodigoAlumno", userID)

	body, err := c.getBody(ctx, "/tieneCartaResponsiva", query)
	if err != nil {
		return false, err
	}
	return parseFlag(strings.Trim(strings.TrimSpace(body), `"`)), nil
}

// Residence fetches the user's academic profile and extracts the residence
// type.
func (c *Client) Residence(ctx context.Context, userID string) (domain.Residence, error) {
	query := url.Values{}
	query.Set("CodigoAlumno", userID)

	var payload academicProfilePayload
	if err := c.getJSON(ctx, "/academico", query, &payload); err != nil {
		return domain.ResidenceUnknown, err
	}
	return parseResidence(payload.Residence), nil
}

// UpdateCovidInformation pushes mutable declaration fields upstream.
// Currently only the suspect flag is writable.
func (c *Client) UpdateCovidInformation(ctx context.Context, userID string, update application.UpdateCovidInformation) error {
	if update.IsSuspect == nil {
		return nil
	}

	flag := "N"
	if *update.IsSuspect {
		flag = "S"
	}
	query := url.Values{}
	query.Set("CodigoAlumno", userID)
	query.Set("Sospechoso", flag)

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/actualizaSospechoso?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("academic suspect update: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// token fetches a fresh session token. The upstream invalidates tokens
// aggressively, so nothing is cached.
func (c *Client) token(ctx context.Context) (string, error) {
	query := url.Values{}
	query.Set("user", c.user)
	query.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/login?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("academic login: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	token := strings.Trim(strings.TrimSpace(string(body)), `"`)
	if token == "" {
		return "", fmt.Errorf("academic login: empty token")
	}
	return token, nil
}

func (c *Client) getBody(ctx context.Context, path string, query url.Values) (string, error) {
	token, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("academic %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.getBody(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("academic %s: decode response: %w", path, err)
	}
	return nil
}
