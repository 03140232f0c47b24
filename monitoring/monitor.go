// Package monitoring turns a running simulation into an HTTP server that
// reports the state of its links and lets a user pause it or inject
// packets.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/slotlink/sim/timing"
	"github.com/sarchlab/slotlink/timeslot"
)

// MonitoredLink is the part of a link the monitor reads and drives.
type MonitoredLink interface {
	Name() string
	Stats() timeslot.Stats
	Send(data []byte) error
}

// OccupancyMeter reports how long a link held the radio.
type OccupancyMeter interface {
	BusyTime() timing.VTime
	TaskCount() int
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	engine      timing.Engine
	links       []MonitoredLink
	occupancy   map[string]OccupancyMeter
	portNumber  int
	openBrowser bool
	logger      zerolog.Logger

	profileDuration time.Duration

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server   *http.Server
	listener net.Listener
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		occupancy:       make(map[string]OccupancyMeter),
		logger:          zerolog.Nop(),
		profileDuration: time.Second,
	}
}

// WithPortNumber sets the port number of the monitor. Zero picks a free
// port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	m.portNumber = portNumber
	return m
}

// WithBrowser makes StartServer open the monitor in the default browser.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// WithLogger sets the logger the monitor reports to.
func (m *Monitor) WithLogger(logger zerolog.Logger) *Monitor {
	m.logger = logger
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e timing.Engine) {
	m.engine = e
}

// RegisterLink registers a link to be monitored.
func (m *Monitor) RegisterLink(l MonitoredLink) {
	m.links = append(m.links, l)
}

// RegisterOccupancy attaches a meter of radio time to the named link.
func (m *Monitor) RegisterOccupancy(linkName string, o OccupancyMeter) {
	m.occupancy[linkName] = o
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine).Methods(http.MethodPost)
	r.HandleFunc("/api/continue", m.continueEngine).Methods(http.MethodPost)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/links", m.listLinks)
	r.HandleFunc("/api/link/{name}", m.linkDetails)
	r.HandleFunc("/api/link/{name}/send", m.send).Methods(http.MethodPost)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/occupancy/{name}", m.reportOccupancy)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

// StartServer starts serving in the background.
func (m *Monitor) StartServer() error {
	addr := ":" + strconv.Itoa(m.portNumber)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("monitor: listen on %s: %w", addr, err)
	}

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	url := m.URL()
	m.logger.Info().Str("url", url).Msg("monitoring simulation")

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().Err(err).Msg("monitor stopped")
		}
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			m.logger.Warn().Err(err).Msg("cannot open browser")
		}
	}

	return nil
}

// URL returns the address the monitor serves on, or an empty string before
// StartServer.
func (m *Monitor) URL() string {
	if m.listener == nil {
		return ""
	}

	port := m.listener.Addr().(*net.TCPAddr).Port

	return fmt.Sprintf("http://localhost:%d", port)
}

// Shutdown stops the server.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	w.WriteHeader(http.StatusNoContent)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	w.WriteHeader(http.StatusNoContent)
}

type nowRsp struct {
	Now     int64  `json:"now_ns"`
	Display string `json:"now"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.Now()
	m.writeJSON(w, nowRsp{Now: int64(now), Display: now.String()})
}

func (m *Monitor) listLinks(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.links))
	for _, l := range m.links {
		names = append(names, l.Name())
	}

	m.writeJSON(w, names)
}

type linkRsp struct {
	Name          string `json:"name"`
	Session       string `json:"session"`
	State         string `json:"state"`
	Halted        bool   `json:"halted"`
	QueueSize     int    `json:"queue_size"`
	QueueCapacity int    `json:"queue_capacity"`
	Attempts      int    `json:"attempts"`
	LeaseActive   bool   `json:"lease_active"`
	Extended      int64  `json:"extended_ns"`

	Slots       uint64 `json:"slots"`
	Extensions  uint64 `json:"extensions"`
	Blocked     uint64 `json:"blocked"`
	Canceled    uint64 `json:"canceled"`
	TxDelivered uint64 `json:"tx_delivered"`
	TxFailed    uint64 `json:"tx_failed"`
	TxDropped   uint64 `json:"tx_dropped"`
	RxDelivered uint64 `json:"rx_delivered"`
}

func (m *Monitor) linkDetails(w http.ResponseWriter, r *http.Request) {
	link := m.findLinkOr404(w, mux.Vars(r)["name"])
	if link == nil {
		return
	}

	s := link.Stats()
	m.writeJSON(w, linkRsp{
		Name:          link.Name(),
		Session:       s.Session.String(),
		State:         s.State.String(),
		Halted:        s.Halted,
		QueueSize:     s.QueueSize,
		QueueCapacity: s.QueueCapacity,
		Attempts:      s.Attempts,
		LeaseActive:   s.Lease.Active,
		Extended:      int64(s.Lease.Extended),
		Slots:         s.Slots,
		Extensions:    s.Extensions,
		Blocked:       s.Blocked,
		Canceled:      s.Canceled,
		TxDelivered:   s.TxDelivered,
		TxFailed:      s.TxFailed,
		TxDropped:     s.TxDropped,
		RxDelivered:   s.RxDelivered,
	})
}

func (m *Monitor) send(w http.ResponseWriter, r *http.Request) {
	link := m.findLinkOr404(w, mux.Vars(r)["name"])
	if link == nil {
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body,
		timeslot.MaxPayloadLength+1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = link.Send(data)

	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, timeslot.ErrQueueFull):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, timeslot.ErrPayloadTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	default:
		http.Error(w, err.Error(), http.StatusConflict)
	}
}

type fieldReq struct {
	LinkName  string `json:"link_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

// listFieldValue serializes one field of a link's counters, addressed by a
// dotted path such as Lease.Extended.
func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	link := m.findLinkOr404(w, req.LinkName)
	if link == nil {
		return
	}

	stats := link.Stats()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&stats)
	serializer.SetMaxDepth(1)

	if req.FieldName != "" {
		err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var buf bytes.Buffer
	if err := serializer.Serialize(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	m.write(w, buf.Bytes())
}

type occupancyRsp struct {
	Slots    int     `json:"slots"`
	BusyTime int64   `json:"busy_ns"`
	Share    float64 `json:"share"`
}

func (m *Monitor) reportOccupancy(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	meter, ok := m.occupancy[name]
	if !ok {
		http.Error(w, "no occupancy meter for "+name, http.StatusNotFound)
		return
	}

	busy := meter.BusyTime()
	rsp := occupancyRsp{
		Slots:    meter.TaskCount(),
		BusyTime: int64(busy),
	}

	if now := m.engine.Now(); now > 0 {
		rsp.Share = float64(busy) / float64(now)
	}

	m.writeJSON(w, rsp)
}

func (m *Monitor) findLinkOr404(
	w http.ResponseWriter,
	name string,
) MonitoredLink {
	for _, l := range m.links {
		if l.Name() == name {
			return l
		}
	}

	http.Error(w, "Link not found", http.StatusNotFound)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	rsp := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		rsp = append(rsp, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	m.writeJSON(w, rsp)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(m.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.writeJSON(w, prof)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	m.write(w, data)
}

func (m *Monitor) write(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		m.logger.Warn().Err(err).Msg("cannot write response")
	}
}
