package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"warfront.io/internal/protocol"
)

const adminHeader = "X-Admin-Key"

// API serves the HTTP surface: public lobby discovery, game creation, and
// the admin endpoints behind a shared secret.
type API struct {
	manager  *Manager
	ws       *WSHandler
	adminKey string
	log      *zap.Logger
}

func NewAPI(m *Manager, ws *WSHandler, adminKey string, log *zap.Logger) *API {
	return &API{manager: m, ws: ws, adminKey: adminKey, log: log}
}

func (a *API) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", func(c *gin.Context) {
		a.ws.Handle(c.Writer, c.Request)
	})

	api := r.Group("/api")
	api.GET("/public_lobbies", a.publicLobbies)
	api.POST("/create_game/:id", a.createGame)

	admin := api.Group("", a.requireAdmin)
	admin.POST("/kick_player/:gameID/:clientID", a.kickPlayer)
	admin.GET("/worker_status", a.workerStatus)

	return r
}

func (a *API) requireAdmin(c *gin.Context) {
	key := c.GetHeader(adminHeader)
	if a.adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(a.adminKey)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (a *API) publicLobbies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lobbies": a.manager.PublicLobbies()})
}

type createGameRequest struct {
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Seed           int64    `json:"seed"`
	Difficulty     string   `json:"difficulty"`
	Bots           int      `json:"bots"`
	Nations        int      `json:"nations"`
	DisableNPCs    bool     `json:"disableNPCs"`
	InstantBuild   bool     `json:"instantBuild"`
	InfiniteGold   bool     `json:"infiniteGold"`
	InfiniteTroops bool     `json:"infiniteTroops"`
	DisabledUnits  []string `json:"disabledUnits"`
}

func (a *API) createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		req.Width, req.Height = 200, 200
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	if req.Difficulty == "" {
		req.Difficulty = "Medium"
	}

	gmap := protocol.MapInfo{Width: req.Width, Height: req.Height, Seed: req.Seed}
	cfg := protocol.GameConfig{
		Difficulty:     req.Difficulty,
		Bots:           req.Bots,
		Nations:        req.Nations,
		DisableNPCs:    req.DisableNPCs,
		InstantBuild:   req.InstantBuild,
		InfiniteGold:   req.InfiniteGold,
		InfiniteTroops: req.InfiniteTroops,
		DisabledUnits:  req.DisabledUnits,
	}
	gs, err := a.manager.CreateGame(c.Param("id"), gmap, cfg)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	a.log.Info("lobby created", zap.String("game", gs.ID()))
	c.JSON(http.StatusOK, gin.H{"gameID": gs.ID(), "lobby": gs.LobbyInfo()})
}

func (a *API) kickPlayer(c *gin.Context) {
	gs, ok := a.manager.Game(c.Param("gameID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such game"})
		return
	}
	if !gs.Kick(c.Param("clientID")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such client"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kicked": c.Param("clientID")})
}

func (a *API) workerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"workers": a.manager.WorkerStatus()})
}
