package handler

import (
	"context"
	"net/http"
	"time"

	"CosmicOutfits_OutfitBuilder/internal/middleware"
	"CosmicOutfits_OutfitBuilder/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxInboundSize = 512
)

// Upgrade HTTP connection to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Frame is a server-to-client websocket message.
type Frame struct {
	Type       string              `json:"type" example:"change"`
	UserID     string              `json:"user_id,omitempty"`
	ServerTime time.Time           `json:"server_time,omitempty"`
	Event      *models.ChangeEvent `json:"event,omitempty"`
}

const (
	frameHello   = "hello"
	frameChange  = "change"
	frameExpired = "session_expired"
)

// DashboardFeed godoc
// @Summary      대시보드 실시간 WebSocket
// @Description  데이터베이스 변경 이벤트(INSERT/UPDATE/DELETE)를 실시간으로 전달합니다.
// @Description  <br>
// @Description  **참고: 이것은 표준 HTTP API가 아닙니다.**
// @Description  클라이언트는 `ws://` 또는 `wss://` 스킴을 사용하여 이 엔드포인트에 연결해야 합니다.
// @Description  인증은 HTTP Header 또는 **쿼리 파라미터('token')**를 통해 수행됩니다.
// @Description  첫 메시지는 `hello` 프레임이고 이후 `change` 프레임이 이어집니다.
// @Tags         WebSocket (Dashboard)
// @Param        token  query    string true  "로그인 시 발급받은 JWT 토큰"
// @Param        tables query    []string false "구독할 테이블 (profiles, products, outfits, cart_items, orders)" collectionFormat(multi)
// @Success      101    {string} string "101 Switching Protocols (WebSocket으로 프로토콜 전환 성공)"
// @Failure      400    {object} handler.ErrorResponse "알 수 없는 테이블"
// @Failure      401    {object} handler.ErrorResponse "토큰 누락 또는 유효하지 않은 토큰"
// @Router       /ws/dashboard [get]
func (h *Handler) DashboardFeed(c *gin.Context) {
	userID := c.GetString(middleware.KeyUserID)
	tables := c.QueryArray("tables")
	for _, t := range tables {
		if !isTable(t) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown table: " + t})
			return
		}
	}

	// WebSocket 연결 업그레이드과 종료
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(userID, tables...)
	defer sub.Close()
	h.log.Infow("dashboard feed connected", "user_id", userID, "tables", tables)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// 토큰이 만료되면 연결도 끝낸다
	expiry := c.GetTime(middleware.KeyTokenExpiry)
	if !expiry.IsZero() {
		var stop context.CancelFunc
		ctx, stop = context.WithDeadline(ctx, expiry)
		defer stop()
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer cancel()
		h.readPump(conn, userID)
	}()

	hello := Frame{Type: frameHello, UserID: userID, ServerTime: time.Now().UTC()}
	if err := writeFrame(conn, hello); err != nil {
		h.log.Warnw("hello frame failed", "user_id", userID, "error", err)
		return
	}

	h.writePump(ctx, conn, sub.C(), userID)

	// 읽기 루프가 끝날 때까지 기다린다
	_ = conn.Close()
	<-readDone
	h.log.Infow("dashboard feed closed", "user_id", userID)
}

// readPump discards client messages and keeps the read deadline fresh on pong.
func (h *Handler) readPump(conn *websocket.Conn, userID string) {
	conn.SetReadLimit(maxInboundSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debugw("dashboard feed read error", "user_id", userID, "error", err)
			}
			return
		}
	}
}

func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, events <-chan models.ChangeEvent, userID string) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if ctx.Err() == context.DeadlineExceeded {
				_ = writeFrame(conn, Frame{Type: frameExpired})
				msg = websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "token expired")
			}
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeFrame(conn, Frame{Type: frameChange, Event: &ev}); err != nil {
				h.log.Debugw("dashboard feed write error", "user_id", userID, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}

func isTable(t string) bool {
	switch t {
	case models.TableProfiles, models.TableProducts, models.TableOutfits, models.TableCart, models.TableOrders:
		return true
	}
	return false
}
