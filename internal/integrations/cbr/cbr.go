package cbr

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/creditai/pricing-service/internal/config"
)

// Currency char codes used by the pricing flows.
const (
	CurrencyUSD = "USD"
	CurrencyINR = "INR"
)

// Quote is one row of the daily quote sheet: the ruble value of Nominal
// units of a currency.
type Quote struct {
	Code    string
	Nominal float64
	Value   float64
}

// CBRClient handles integration with the Central Bank of Russia daily
// currency quote service
type CBRClient struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewCBRClient initializes a new CBR client
func NewCBRClient(cfg *config.Config, log *logrus.Logger) *CBRClient {
	return &CBRClient{
		url: cfg.CBRURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// buildSOAPRequest creates a SOAP request for today's currency quotes
func (c *CBRClient) buildSOAPRequest() string {
	onDate := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<GetCursOnDate xmlns="http://web.cbr.ru/">
					<On_date>%s</On_date>
				</GetCursOnDate>
			</soap12:Body>
		</soap12:Envelope>`, onDate)
}

// sendRequest sends SOAP request to CBR
func (c *CBRClient) sendRequest(soapRequest string) ([]byte, error) {
	req, err := http.NewRequest("POST", c.url, bytes.NewBuffer([]byte(soapRequest)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/GetCursOnDate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	// Log the raw XML response for debugging
	c.log.Debugf("CBR XML response: %s", string(body))

	return body, nil
}

// parseQuotes extracts the currency rows from the XML response. Malformed
// rows are skipped; an empty sheet is an error.
func (c *CBRClient) parseQuotes(rawBody []byte) (map[string]Quote, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %v", err)
	}

	rows := doc.FindElements("//ValuteData/ValuteCursOnDate")
	if len(rows) == 0 {
		return nil, fmt.Errorf("no currency data found in XML")
	}

	quotes := make(map[string]Quote, len(rows))
	for _, row := range rows {
		codeEl := row.FindElement("./VchCode")
		nomEl := row.FindElement("./Vnom")
		cursEl := row.FindElement("./Vcurs")
		if codeEl == nil || nomEl == nil || cursEl == nil {
			continue
		}

		var nominal, value float64
		if _, err := fmt.Sscanf(strings.TrimSpace(nomEl.Text()), "%f", &nominal); err != nil {
			continue
		}
		if _, err := fmt.Sscanf(strings.TrimSpace(cursEl.Text()), "%f", &value); err != nil {
			continue
		}

		code := strings.TrimSpace(codeEl.Text())
		quotes[code] = Quote{Code: code, Nominal: nominal, Value: value}
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("no parsable currency rows in XML")
	}
	return quotes, nil
}

// GetDailyQuotes retrieves today's currency quote sheet from CBR
func (c *CBRClient) GetDailyQuotes() (map[string]Quote, error) {
	body, err := c.sendRequest(c.buildSOAPRequest())
	if err != nil {
		return nil, err
	}

	quotes, err := c.parseQuotes(body)
	if err != nil {
		return nil, err
	}

	c.log.Infof("Retrieved %d currency quotes from CBR", len(quotes))
	return quotes, nil
}

// CrossRate derives how many units of the counter currency one unit of the
// base currency buys, using the ruble value of each.
func CrossRate(quotes map[string]Quote, base, counter string) (float64, error) {
	b, ok := quotes[base]
	if !ok {
		return 0, fmt.Errorf("no quote for %s", base)
	}
	q, ok := quotes[counter]
	if !ok {
		return 0, fmt.Errorf("no quote for %s", counter)
	}
	if b.Nominal <= 0 || q.Nominal <= 0 || q.Value <= 0 {
		return 0, fmt.Errorf("degenerate quote for %s/%s", base, counter)
	}
	return (b.Value / b.Nominal) / (q.Value / q.Nominal), nil
}
