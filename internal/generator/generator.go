// Package generator drives the customers service with randomly shaped
// customer records over its HTTP API.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"customers-service/internal/config"

	"github.com/google/uuid"
)

// contactMethodKinds are the JSON field names of the five contact
// methods a generated customer may receive.
var contactMethodKinds = []string{
	"emailAddress",
	"residenceAddress",
	"registeredAddress",
	"privatePhoneNumber",
	"businessPhoneNumber",
}

// CustomerGenerator creates customers through the live service: one
// create call plus one contact-attachment call per customer, strictly
// sequential. Any I/O failure aborts the whole run; customers created
// before the failure remain.
type CustomerGenerator struct {
	client  *http.Client
	baseURL string
	pesel   *PeselGenerator
	pools   *NamePools
	rnd     *rand.Rand
	logger  *slog.Logger
}

func New(cfg config.GeneratorConfig, pools *NamePools, rnd *rand.Rand, logger *slog.Logger) *CustomerGenerator {
	if pools == nil || rnd == nil {
		panic("CustomerGenerator dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CustomerGenerator{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		pesel:   NewPeselGenerator(rnd),
		pools:   pools,
		rnd:     rnd,
		logger:  logger.With("component", "CustomerGenerator"),
	}
}

// Generate creates count customers and attaches 2-5 contact methods to
// each, returning on the first unrecoverable error.
func (g *CustomerGenerator) Generate(ctx context.Context, count int) error {
	for i := 0; i < count; i++ {
		pesel := g.pesel.Generate(i)
		gender := GenderOf(pesel)

		person := map[string]string{
			"peselNumber": pesel,
			"name":        g.pools.RandomName(g.rnd, gender),
			"surname":     g.pools.RandomSurname(g.rnd, gender),
		}

		location, err := g.addCustomer(ctx, person)
		if err != nil {
			return fmt.Errorf("customer %d: %w", i, err)
		}
		g.logger.Info("Added customer", "location", location)

		quantity := 2 + g.rnd.Intn(4)
		statusCode, err := g.addContactMethods(ctx, location, g.buildContacts(quantity))
		if err != nil {
			return fmt.Errorf("customer %d contact methods: %w", i, err)
		}
		g.logger.Info("Added contact methods", "statusCode", statusCode)
	}
	return nil
}

// buildContacts picks quantity distinct method kinds and synthesizes a
// type-appropriate value for each.
func (g *CustomerGenerator) buildContacts(quantity int) map[string]string {
	methods := make(map[string]string, quantity)
	for _, idx := range g.rnd.Perm(len(contactMethodKinds))[:quantity] {
		kind := contactMethodKinds[idx]
		switch {
		case strings.Contains(strings.ToLower(kind), "email"):
			methods[kind] = g.generateEmail()
		case strings.Contains(strings.ToLower(kind), "phone"):
			methods[kind] = g.generatePhoneNumber()
		default:
			methods[kind] = generateAddress(kind)
		}
	}
	return methods
}

func (g *CustomerGenerator) generateEmail() string {
	return fmt.Sprintf("customer%d@example.com", g.rnd.Intn(99999))
}

// generatePhoneNumber concatenates a 5-digit and an up-to-6-digit random
// number, which keeps the result inside the 9-11 digit contract.
func (g *CustomerGenerator) generatePhoneNumber() string {
	firstFiveDigits := 10000 + g.rnd.Intn(90000)
	nextDigits := 1000 + g.rnd.Intn(998999)
	return fmt.Sprintf("%d%d", firstFiveDigits, nextDigits)
}

func generateAddress(kind string) string {
	return kind + " " + uuid.NewString()
}

// addCustomer posts the create request and returns the Location header
// of the new resource.
func (g *CustomerGenerator) addCustomer(ctx context.Context, person map[string]string) (string, error) {
	resp, err := g.post(ctx, g.baseURL+"/customers", person)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create returned status %d", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("create response missing Location header")
	}
	return location, nil
}

func (g *CustomerGenerator) addContactMethods(ctx context.Context, location string, methods map[string]string) (int, error) {
	target := location + "/methods"
	if !strings.HasPrefix(target, "http") {
		target = g.baseURL + target
	}

	resp, err := g.post(ctx, target, methods)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func (g *CustomerGenerator) post(ctx context.Context, url string, payload map[string]string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	return resp, nil
}
