/*
Package soap implements the legacy XML/RPC surface: envelope parsing,
response and fault building, and the static WSDL.

PURPOSE:
  Translates GetBenefitsCost envelopes onto the same canonical query the
  JSON front end uses, and renders the resulting CostRecords as an
  Items/Item sequence. Faults carry a stable code and a message only -
  internal error detail never crosses this boundary.

ENVELOPE TOLERANCE:
  Request parsing matches local element names regardless of namespace
  prefix, accepts GetBenefitsCostRequest as an alias of GetBenefitsCost,
  and treats a Body without the operation element as an unfiltered query.

NUMERIC FORM:
  Every numeric field serializes as its plain decimal string (the WSDL
  declares xsd:decimal/xsd:int), so values round-trip without exponent
  notation or locale separators. A null pctSalary omits the element.
*/
package soap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/openhcm/benefits-engine/benefits"
)

// FaultCodeServer is the stable fault code for every RaaS failure.
const FaultCodeServer = "soap:Server"

// =============================================================================
// REQUEST PARSING
// =============================================================================

// GetBenefitsCost is the operation payload. All fields are optional;
// dates are YYYY-MM-DD strings validated by the request translator.
type GetBenefitsCost struct {
	Dept string `xml:"Dept"`
	From string `xml:"From"`
	To   string `xml:"To"`
}

type requestEnvelope struct {
	XMLName xml.Name
	Body    requestBody `xml:"Body"`
}

type requestBody struct {
	GetBenefitsCost        *GetBenefitsCost `xml:"GetBenefitsCost"`
	GetBenefitsCostRequest *GetBenefitsCost `xml:"GetBenefitsCostRequest"`
}

// ParseRequest extracts the operation payload from an envelope body.
// A syntactically valid envelope without the operation element yields the
// zero payload (an unfiltered query); malformed XML is an error.
func ParseRequest(data []byte) (GetBenefitsCost, error) {
	var env requestEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return GetBenefitsCost{}, fmt.Errorf("malformed envelope: %w", err)
	}
	switch {
	case env.Body.GetBenefitsCost != nil:
		return *env.Body.GetBenefitsCost, nil
	case env.Body.GetBenefitsCostRequest != nil:
		return *env.Body.GetBenefitsCostRequest, nil
	}
	return GetBenefitsCost{}, nil
}

// =============================================================================
// RESPONSE BUILDING
// =============================================================================

// Item mirrors the Item element of GetBenefitsCostResponse.
type Item struct {
	WorkerID       string  `xml:"WorkerId"`
	FirstName      string  `xml:"FirstName"`
	LastName       string  `xml:"LastName"`
	Department     string  `xml:"Department"`
	Salary         string  `xml:"Salary"`
	YearsOfService string  `xml:"YearsOfService"`
	BenefitsCost   string  `xml:"BenefitsCost"`
	PctSalary      *string `xml:"PctSalary,omitempty"`
	TotalComp      string  `xml:"TotalComp"`
}

type itemList struct {
	Item []Item `xml:"Item"`
}

type costResponse struct {
	Items itemList `xml:"Items"`
}

type responseEnvelope struct {
	XMLName xml.Name     `xml:"soapenv:Envelope"`
	EnvNS   string       `xml:"xmlns:soapenv,attr"`
	TNS     string       `xml:"xmlns:tns,attr"`
	Body    responseBody `xml:"soapenv:Body"`
}

type responseBody struct {
	Response costResponse `xml:"tns:GetBenefitsCostResponse"`
}

// ItemFromRecord converts one canonical row to its envelope form.
func ItemFromRecord(r benefits.CostRecord) Item {
	item := Item{
		WorkerID:       string(r.WorkerID),
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Department:     r.Department,
		Salary:         r.Salary.String(),
		YearsOfService: strconv.Itoa(r.YearsOfService),
		BenefitsCost:   r.BenefitsCost.String(),
		TotalComp:      r.TotalComp.String(),
	}
	if r.PctSalary.Valid {
		pct := r.PctSalary.Decimal.String()
		item.PctSalary = &pct
	}
	return item
}

// WriteResponse renders records as a GetBenefitsCostResponse envelope.
func WriteResponse(w io.Writer, records []benefits.CostRecord) error {
	items := make([]Item, len(records))
	for i, r := range records {
		items[i] = ItemFromRecord(r)
	}

	env := responseEnvelope{
		EnvNS: "http://schemas.xmlsoap.org/soap/envelope/",
		TNS:   "urn:openhcm:raas",
		Body:  responseBody{Response: costResponse{Items: itemList{Item: items}}},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(env)
}

// EnvelopeProjector adapts WriteResponse to the benefits.Projector
// interface so the XML surface shares the projection contract.
type EnvelopeProjector struct{}

func (EnvelopeProjector) ContentType() string { return "text/xml; charset=utf-8" }

func (EnvelopeProjector) Project(w io.Writer, records []benefits.CostRecord) error {
	return WriteResponse(w, records)
}

// =============================================================================
// FAULTS
// =============================================================================

type faultBody struct {
	Fault fault `xml:"soapenv:Fault"`
}

type fault struct {
	Code    string `xml:"faultcode"`
	Message string `xml:"faultstring"`
}

type faultEnvelope struct {
	XMLName xml.Name  `xml:"soapenv:Envelope"`
	EnvNS   string    `xml:"xmlns:soapenv,attr"`
	Body    faultBody `xml:"soapenv:Body"`
}

// WriteFault renders a fault envelope. Callers pass a stable, external
// message; raw internal errors must be translated before reaching here.
func WriteFault(w io.Writer, message string) error {
	if message == "" {
		message = "Unhandled error"
	}
	env := faultEnvelope{
		EnvNS: "http://schemas.xmlsoap.org/soap/envelope/",
		Body:  faultBody{Fault: fault{Code: FaultCodeServer, Message: message}},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(env)
}
