package cosign

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kollektive-hackathon/flowkit/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/flowkit/internal/pkg/reject"
	"github.com/kollektive-hackathon/flowkit/internal/pkg/utils"
)

type cosignHandler struct {
	cosign *cosignService
}

type CosignRequest struct {
	Method  string   `json:"method"`
	Payload Signable `json:"payload"`
}

func RegisterRoutes(rg *gin.RouterGroup, payer blockchain.Payer, allowed *blockchain.ScriptAllowList) {
	handler := &cosignHandler{
		cosign: &cosignService{payer: payer, allowed: allowed},
	}

	routes := rg.Group("/cosign")
	routes.POST("", handler.handleCosign)
}

func (ch cosignHandler) handleCosign(c *gin.Context) {
	body, err := utils.JsonDecode[CosignRequest](c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	signatures, problem := ch.cosign.VerifyAndSign(body)
	if problem != nil {
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	c.JSON(http.StatusOK, signatures)
}
