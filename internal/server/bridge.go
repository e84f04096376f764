// Package server provides the HTTP and websocket surface of the daemon: the
// renderer bridge, the tuning-profile API, and static file serving for the
// bundled web renderer.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/mapper"
	"github.com/ayusman/abhinaya/internal/scene"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// flushInterval is how often queued commands are broadcast, ~30 FPS.
const flushInterval = 33 * time.Millisecond

// Command is one renderer instruction in the websocket protocol.
type Command struct {
	Op   string         `json:"op"`
	Args map[string]any `json:"args,omitempty"`
}

// helloMessage is the first client message, announcing which avatar
// parameters the loaded model exposes.
type helloMessage struct {
	Type   string   `json:"type"`
	Params []string `json:"params"`
}

// Bridge connects the mapper and scene controller to the browser renderer
// over a websocket. Avatar and scene calls queue commands; a broadcast loop
// flushes the queue as one batched message per tick. It implements both
// mapper.AvatarModel and scene.Renderer.
type Bridge struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	pending []Command
	params  []string
	stopCh  chan struct{}

	// OnModelReady fires after a client announces its parameter list, so
	// the daemon can rebind the mapper against the fresh set.
	OnModelReady func()

	// OnClientCountChange fires with the new client total whenever a
	// renderer connects or disconnects.
	OnClientCountChange func(n int)
}

// NewBridge creates a Bridge and starts its broadcast loop.
func NewBridge() *Bridge {
	b := &Bridge{
		clients: make(map[*websocket.Conn]bool),
		stopCh:  make(chan struct{}),
	}
	go b.broadcast()
	return b
}

// Close stops the broadcast loop and drops all clients.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-b.stopCh:
	default:
		close(b.stopCh)
	}
	for conn := range b.clients {
		conn.Close()
	}
	b.clients = make(map[*websocket.Conn]bool)
}

// ServeHTTP handles websocket upgrade requests from the renderer.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	b.mu.Lock()
	b.clients[conn] = true
	n := len(b.clients)
	notify := b.OnClientCountChange
	b.mu.Unlock()
	if notify != nil {
		notify(n)
	}

	defer func() {
		b.mu.Lock()
		delete(b.clients, conn)
		n := len(b.clients)
		notify := b.OnClientCountChange
		b.mu.Unlock()
		if notify != nil {
			notify(n)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		b.handleClientMessage(data)
	}
}

// handleClientMessage processes one inbound client message. Only the hello
// message carries state the daemon needs; everything else is ignored.
func (b *Bridge) handleClientMessage(data []byte) {
	var hello helloMessage
	if err := json.Unmarshal(data, &hello); err != nil || hello.Type != "hello" {
		return
	}

	b.mu.Lock()
	b.params = append([]string(nil), hello.Params...)
	ready := b.OnModelReady
	b.mu.Unlock()

	log.Printf("Renderer announced %d avatar parameters", len(hello.Params))
	if ready != nil {
		ready()
	}
}

// broadcast flushes the queued commands to every client at the tick rate.
func (b *Bridge) broadcast() {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			return
		case <-ticker.C:
			b.flush()
		}
	}
}

func (b *Bridge) flush() {
	b.mu.Lock()
	if len(b.pending) == 0 || len(b.clients) == 0 {
		b.pending = b.pending[:0]
		b.mu.Unlock()
		return
	}
	msg, err := json.Marshal(map[string]any{
		"commands":  b.pending,
		"timestamp": time.Now().UnixMilli(),
	})
	b.pending = b.pending[:0]
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for conn := range b.clients {
		conns = append(conns, conn)
	}
	b.mu.Unlock()

	if err != nil {
		return
	}
	for _, conn := range conns {
		conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (b *Bridge) queue(op string, args map[string]any) {
	b.mu.Lock()
	b.pending = append(b.pending, Command{Op: op, Args: args})
	b.mu.Unlock()
}

// ResolveParameter resolves a parameter name against the set the renderer
// announced. Before any renderer connects nothing resolves; the daemon
// rebinds on OnModelReady.
func (b *Bridge) ResolveParameter(name string) (mapper.ParamHandle, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.params {
		if p == name {
			return mapper.ParamHandle(i), true
		}
	}
	return 0, false
}

// SetParameter queues a parameter write. The handle indexes the announced
// parameter list.
func (b *Bridge) SetParameter(h mapper.ParamHandle, value float64) {
	b.mu.Lock()
	if int(h) >= len(b.params) {
		b.mu.Unlock()
		return
	}
	name := b.params[h]
	b.mu.Unlock()
	b.queue("setParam", map[string]any{"name": name, "value": value})
}

func (b *Bridge) SetFocus(x, y float64) {
	b.queue("setFocus", map[string]any{"x": x, "y": y})
}

func (b *Bridge) SetBodyAngle(x, y, z float64) {
	b.queue("setBodyAngle", map[string]any{"x": x, "y": y, "z": z})
}

func (b *Bridge) PlayMotion(group string, index, priority int) {
	b.queue("playMotion", map[string]any{"group": group, "index": index, "priority": priority})
}

func (b *Bridge) SetExpression(id string) {
	b.queue("setExpression", map[string]any{"id": id})
}

func (b *Bridge) SetMouthOpenness(value float64) {
	b.queue("setMouth", map[string]any{"value": value})
}

func (b *Bridge) SetTrackingMode(enabled bool) {
	b.queue("setTracking", map[string]any{"enabled": enabled})
}

func (b *Bridge) TriggerExplosion(origin scene.Vec3) {
	b.queue("explosion", map[string]any{"origin": origin})
}

func (b *Bridge) SetDragging(active bool, dx, dy float64) {
	b.queue("setDrag", map[string]any{"active": active, "dx": dx, "dy": dy})
}

func (b *Bridge) SetScale(value float64) {
	b.queue("setScale", map[string]any{"value": value})
}

func (b *Bridge) SetPulsing(active bool) {
	b.queue("setPulse", map[string]any{"active": active})
}

func (b *Bridge) SelectRegion(origin scene.Vec3) {
	b.queue("selectRegion", map[string]any{"origin": origin})
}

// PublishLandmarks queues a diagnostic landmark snapshot for visualization
// clients. Not part of the control path.
func (b *Bridge) PublishLandmarks(hands []landmark.HandObservation) {
	b.queue("landmarks", map[string]any{"hands": hands})
}

var (
	_ mapper.AvatarModel = (*Bridge)(nil)
	_ scene.Renderer     = (*Bridge)(nil)
)
