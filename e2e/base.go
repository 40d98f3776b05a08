package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/gookit/color"
	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"
)

type BaseSuite struct {
	suite.Suite
	Config Config
}

// Event is an outbound frame as a client sees it.
type Event struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("SERVER_ADDR not set, skipping end-to-end suite")
	}
}

func (s *BaseSuite) header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// Participant opens a WebSocket with the given handshake identity.
func (s *BaseSuite) Participant(name, userID, role string) *ws.Conn {
	s.header(s.T(), fmt.Sprintf("%s connects as %s", name, role))
	q := url.Values{"user_id": {userID}, "name": {name}, "role": {role}}
	u := url.URL{Scheme: "ws", Host: s.Config.ServerAddr, Path: "/ws", RawQuery: q.Encode()}
	conn, _, err := ws.DefaultDialer.Dial(u.String(), nil)
	s.Require().NoError(err, "Failed to open WebSocket at "+u.String())
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *BaseSuite) Send(conn *ws.Conn, name string, data any) {
	s.Require().NoError(conn.WriteJSON(map[string]any{"event": name, "data": data}))
}

// Expect reads frames until one named name arrives, failing after timeout.
func (s *BaseSuite) Expect(conn *ws.Conn, name string, timeout time.Duration) Event {
	deadline := time.Now().Add(timeout)
	for {
		s.Require().NoError(conn.SetReadDeadline(deadline))
		var e Event
		s.Require().NoError(conn.ReadJSON(&e), "waiting for "+name)
		if s.Config.DebugJSON {
			raw, _ := json.MarshalIndent(e, "", "  ")
			s.T().Log(string(raw))
		}
		if e.Event == name {
			return e
		}
	}
}

// WithHealth provides a gRPC health client; the test is skipped without GRPC_ADDR.
func (s *BaseSuite) WithHealth(name string, fn func(ctx context.Context, client healthpb.HealthClient)) {
	if s.Config.GrpcAddr == "" {
		s.T().Skip("GRPC_ADDR not set")
	}
	s.header(s.T(), name)
	conn, err := grpc.NewClient(s.Config.GrpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.GrpcAddr)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	fn(ctx, healthpb.NewHealthClient(conn))
}

func (s *BaseSuite) dumpProto(resp *healthpb.HealthCheckResponse) {
	if !s.Config.DebugJSON {
		return
	}
	marshaler := protojson.MarshalOptions{UseProtoNames: true, Multiline: true, EmitUnpopulated: true}
	s.T().Log(marshaler.Format(resp))
}
