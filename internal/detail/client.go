package detail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

var ErrDetailLookup = errors.New("detail lookup failed")

// LookupError is returned when the endpoint answers with status "error".
type LookupError struct {
	CaseNum int64
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%v for case %d", ErrDetailLookup, e.CaseNum)
}

func (e *LookupError) Unwrap() error {
	return ErrDetailLookup
}

type Detail struct {
	CaseNum   int64
	Status    string
	FirstName string
	LastName  string
	Raw       json.RawMessage
}

func (d Detail) String() string {
	return d.FirstName + " " + d.LastName
}

type response struct {
	Status    string `json:"status"`
	ChildBean struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"childBean"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

// Lookup fetches the childDetail document for one case number.
func (c *Client) Lookup(ctx context.Context, caseNum int64) (Detail, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Detail{}, fmt.Errorf("invalid detail url: %w", err)
	}
	q := u.Query()
	q.Set("action", "childDetail")
	q.Set("orgPrefix", "NCMC")
	q.Set("seqNum", "1")
	q.Set("caseLang", "en_US")
	q.Set("searchLang", "en_US")
	q.Set("LanguageId", "en_US")
	q.Set("caseNum", strconv.FormatInt(caseNum, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Detail{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Detail{}, fmt.Errorf("detail request for case %d: %w", caseNum, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Detail{}, fmt.Errorf("detail request for case %d: HTTP %d", caseNum, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Detail{}, fmt.Errorf("reading detail for case %d: %w", caseNum, err)
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return Detail{}, fmt.Errorf("decoding detail for case %d: %w", caseNum, err)
	}

	if out.Status == "error" {
		return Detail{}, &LookupError{CaseNum: caseNum}
	}

	return Detail{
		CaseNum:   caseNum,
		Status:    out.Status,
		FirstName: out.ChildBean.FirstName,
		LastName:  out.ChildBean.LastName,
		Raw:       json.RawMessage(body),
	}, nil
}
