package server

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/froydnj/contentdir/internal/directory"
)

// ControlHandler accepts SOAP control requests and dispatches them to the
// directory service. Implements the [Handler] interface.
type ControlHandler struct {
	service *directory.Service
	logger  *log.Logger
}

// NewControlHandler creates the control endpoint for a directory service.
func NewControlHandler(service *directory.Service, logger *log.Logger) *ControlHandler {
	return &ControlHandler{service: service, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *ControlHandler) Routes() []string {
	return []string{"/control"}
}

type browseArgs struct {
	ObjectID       string `xml:"ObjectID"`
	BrowseFlag     string `xml:"BrowseFlag"`
	Filter         string `xml:"Filter"`
	StartingIndex  uint32 `xml:"StartingIndex"`
	RequestedCount uint32 `xml:"RequestedCount"`
	SortCriteria   string `xml:"SortCriteria"`
}

type searchArgs struct {
	ContainerID    string `xml:"ContainerID"`
	SearchCriteria string `xml:"SearchCriteria"`
	Filter         string `xml:"Filter"`
	StartingIndex  uint32 `xml:"StartingIndex"`
	RequestedCount uint32 `xml:"RequestedCount"`
	SortCriteria   string `xml:"SortCriteria"`
}

// ServeHTTP handles one control request: it parses the SOAPACTION header,
// decodes the action arguments, and renders either the action response or a
// UPnPError fault.
func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	action, err := parseSOAPAction(r.Header.Get("SOAPACTION"))
	if err != nil {
		h.logger.Warn("rejecting control request", "err", err)
		writeSOAPFault(w, 401, "Invalid Action")
		return
	}

	switch action {
	case "Browse":
		h.browse(w, r)
	case "Search":
		h.search(w, r)
	case "GetSystemUpdateID":
		writeSOAPResponse(w, action, []soapArg{
			{Name: "Id", Value: formatUint(h.service.SystemUpdateID())},
		})
	case "GetSearchCapabilities":
		writeSOAPResponse(w, action, []soapArg{
			{Name: "SearchCaps", Value: directory.SearchCapabilities},
		})
	case "GetSortCapabilities":
		writeSOAPResponse(w, action, []soapArg{
			{Name: "SortCaps", Value: directory.SortCapabilities},
		})
	default:
		writeSOAPFault(w, 401, "Invalid Action")
	}
}

func (h *ControlHandler) browse(w http.ResponseWriter, r *http.Request) {
	var args browseArgs
	if err := decodeAction(r, &args); err != nil {
		h.logger.Warn("bad browse request", "err", err)
		writeSOAPFault(w, 402, "Invalid Args")
		return
	}

	res, err := h.service.Browse(r.Context(), args.ObjectID, args.BrowseFlag,
		args.Filter, args.StartingIndex, args.RequestedCount, args.SortCriteria)
	if err != nil {
		h.logger.Warn("browse failed", "object", args.ObjectID, "err", err)
		writeSOAPFault(w, directory.FaultCode(err), err.Error())
		return
	}

	writeSOAPResponse(w, "Browse", browseResult(res))
}

func (h *ControlHandler) search(w http.ResponseWriter, r *http.Request) {
	var args searchArgs
	if err := decodeAction(r, &args); err != nil {
		h.logger.Warn("bad search request", "err", err)
		writeSOAPFault(w, 402, "Invalid Args")
		return
	}

	res, err := h.service.Search(r.Context(), args.ContainerID, args.SearchCriteria,
		args.Filter, args.StartingIndex, args.RequestedCount, args.SortCriteria)
	if err != nil {
		h.logger.Warn("search failed", "criteria", args.SearchCriteria, "err", err)
		writeSOAPFault(w, directory.FaultCode(err), err.Error())
		return
	}

	writeSOAPResponse(w, "Search", browseResult(res))
}

func browseResult(res directory.BrowseResult) []soapArg {
	return []soapArg{
		{Name: "Result", Value: res.XML},
		{Name: "NumberReturned", Value: formatUint(res.Returned)},
		{Name: "TotalMatches", Value: formatUint(res.Total)},
		{Name: "UpdateID", Value: formatUint(res.UpdateID)},
	}
}

func formatUint(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
