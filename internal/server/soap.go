package server

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/froydnj/contentdir/internal/didl"
)

// ServiceType is the UPnP service type this server implements.
const ServiceType = "urn:schemas-upnp-org:service:ContentDirectory:1"

// soapEnvelope captures the raw body of a control request so each action can
// decode its own argument struct from the inner XML.
type soapEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"Body"`
}

// parseSOAPAction extracts the action name from a SOAPACTION header value of
// the form "urn:...:ContentDirectory:1#Browse".
func parseSOAPAction(header string) (string, error) {
	v := strings.Trim(strings.TrimSpace(header), `"`)
	service, action, ok := strings.Cut(v, "#")
	if !ok || action == "" {
		return "", fmt.Errorf("malformed SOAPACTION %q", header)
	}
	if service != ServiceType {
		return "", fmt.Errorf("unknown service %q", service)
	}
	return action, nil
}

// decodeAction reads the request body and unmarshals the action arguments.
func decodeAction(r *http.Request, args any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read control body: %w", err)
	}
	var env soapEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("parse envelope: %w", err)
	}
	if err := xml.Unmarshal(env.Body.Inner, args); err != nil {
		return fmt.Errorf("parse action arguments: %w", err)
	}
	return nil
}

// soapArg is one output argument of an action response.
type soapArg struct {
	Name  string
	Value string
}

// writeSOAPResponse renders a successful action response envelope.
func writeSOAPResponse(w http.ResponseWriter, action string, args []soapArg) {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"` +
		` s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"><s:Body>`)
	fmt.Fprintf(&b, `<u:%sResponse xmlns:u="%s">`, action, ServiceType)
	for _, a := range args {
		fmt.Fprintf(&b, "<%s>%s</%s>", a.Name, didl.Escape(a.Value), a.Name)
	}
	fmt.Fprintf(&b, `</u:%sResponse>`, action)
	b.WriteString(`</s:Body></s:Envelope>`)

	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.Header().Set("Ext", "")
	io.WriteString(w, b.String())
}

// writeSOAPFault renders a UPnPError fault envelope with HTTP 500, per the
// UPnP device architecture.
func writeSOAPFault(w http.ResponseWriter, code int, desc string) {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"` +
		` s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"><s:Body><s:Fault>` +
		`<faultcode>s:Client</faultcode><faultstring>UPnPError</faultstring><detail>` +
		`<UPnPError xmlns="urn:schemas-upnp-org:control-1-0">`)
	fmt.Fprintf(&b, "<errorCode>%d</errorCode><errorDescription>%s</errorDescription>",
		code, didl.Escape(desc))
	b.WriteString(`</UPnPError></detail></s:Fault></s:Body></s:Envelope>`)

	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.WriteHeader(http.StatusInternalServerError)
	io.WriteString(w, b.String())
}
