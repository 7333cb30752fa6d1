package server

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDeviceDescription(t *testing.T) {
	h := NewDeviceHandler("Living Room <Media>", "uuid:1234")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/device.xml", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<deviceType>urn:schemas-upnp-org:device:MediaServer:1</deviceType>",
		"<friendlyName>Living Room &lt;Media&gt;</friendlyName>",
		"<UDN>uuid:1234</UDN>",
		"<controlURL>/control</controlURL>",
		"<eventSubURL>/event</eventSubURL>",
		"<SCPDURL>/scpd/ContentDirectory.xml</SCPDURL>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("device description missing %q", want)
		}
	}
}

func TestServiceDescription(t *testing.T) {
	h := NewDeviceHandler("x", "uuid:1234")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/scpd/ContentDirectory.xml", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<name>Browse</name>",
		"<name>Search</name>",
		"<name>GetSystemUpdateID</name>",
		"<name>GetSearchCapabilities</name>",
		"<name>GetSortCapabilities</name>",
		`<stateVariable sendEvents="yes">`,
		"<name>SystemUpdateID</name>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("SCPD missing %q", want)
		}
	}
}

func TestDescriptionRejectsOtherMethods(t *testing.T) {
	h := NewDeviceHandler("x", "uuid:1234")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/device.xml", nil))
	if rec.Code != 405 {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
