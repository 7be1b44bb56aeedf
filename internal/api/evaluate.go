package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/tensor"
	"github.com/zephyrtronium/mathexpr/workflow"
)

type EvaluateReq struct {
	Expression string `json:"expression"`
	// Slots binds a, b, and c to numbers or sized object specs like
	// "image:512x512".
	Slots    map[string]string `json:"slots"`
	Workflow json.RawMessage   `json:"workflow"`
	Prompt   json.RawMessage   `json:"prompt"`
	// Seed seeds randomint and randomchoice if set.
	Seed *int64 `json:"seed"`
}

type EvaluateResp struct {
	Int    int64   `json:"int"`
	Float  float64 `json:"float"`
	Cached bool    `json:"cached"`
}

type ErrorResp struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (h *HttpEndpoints) evaluate(c *gin.Context) {
	var req EvaluateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Expression == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing expression"})
		return
	}
	if h.maxLength > 0 && len(req.Expression) > h.maxLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expression too long"})
		return
	}

	opts := []mathexpr.ContextOption{mathexpr.Prec(h.prec)}
	vars := make(map[string]mathexpr.Var, len(req.Slots))
	for name, spec := range req.Slots {
		if !isSlot(name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown slot " + strconv.Quote(name)})
			return
		}
		v, err := tensor.ParseVar(spec)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		vars[name] = v
	}
	opts = append(opts, mathexpr.SetVars(vars))
	if len(req.Workflow) > 0 || len(req.Prompt) > 0 {
		reg, err := workflow.Load(document(req.Workflow), document(req.Prompt))
		if err != nil {
			slog.Debug("bad workflow", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts = append(opts, mathexpr.Widgets(reg))
	}
	if req.Seed != nil {
		opts = append(opts, mathexpr.Rand(rand.New(rand.NewSource(*req.Seed))))
	}

	ck := mathexpr.IsChanged(req.Expression)
	r, cached, err := h.memo.LoadOrStore(ck, h.inputs(&req), func() (mathexpr.Result, error) {
		return mathexpr.Evaluate(req.Expression, opts...)
	})
	if err != nil {
		kind := mathexpr.KindOf(err)
		slog.Debug("evaluation failed", slog.String("expression", req.Expression), slog.String("kind", kind.String()), slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, ErrorResp{Error: err.Error(), Kind: kind.String()})
		return
	}
	slog.Debug("evaluated", slog.String("expression", req.Expression), slog.String("result", r.String()), slog.Bool("cached", cached))
	c.JSON(http.StatusOK, EvaluateResp{Int: r.Int, Float: r.Float, Cached: cached})
}

// inputs lists everything besides the expression that determines a result.
func (h *HttpEndpoints) inputs(req *EvaluateReq) []string {
	in := make([]string, 0, len(mathexpr.Slots)+3)
	for _, name := range mathexpr.Slots {
		if spec, ok := req.Slots[name]; ok {
			in = append(in, name+"="+spec)
		} else {
			in = append(in, name)
		}
	}
	return append(in, string(req.Workflow), string(req.Prompt), strconv.FormatUint(uint64(h.prec), 10))
}

func isSlot(name string) bool {
	for _, s := range mathexpr.Slots {
		if name == s {
			return true
		}
	}
	return false
}

func document(b json.RawMessage) io.Reader {
	if len(b) == 0 {
		return nil
	}
	return bytes.NewReader(b)
}

type ChangedReq struct {
	Expression string `json:"expression"`
}

func (h *HttpEndpoints) changed(c *gin.Context) {
	var req ChangedReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ck := mathexpr.IsChanged(req.Expression)
	c.JSON(http.StatusOK, gin.H{"key": ck.String(), "always": ck.IsAlways()})
}

func (h *HttpEndpoints) functions(c *gin.Context) {
	c.JSON(http.StatusOK, mathexpr.Funcs())
}
