package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stake-ledger/controller"
	"stake-ledger/service"
)

func Init(s service.IService) *gin.Engine {
	r := gin.Default()
	group := r.Group("")

	group.Use(Cors())

	group.GET("/stake", controller.StakeEndpoint(s))
	group.GET("/userStakes", controller.UserStakesEndpoint(s))
	group.GET("/userStakes/active", controller.ActiveUserStakesEndpoint(s))
	group.GET("/projectStakes", controller.ProjectStakesEndpoint(s))
	group.GET("/registry", controller.RegistryEndpoint(s))
	group.GET("/snapshots", controller.SnapshotsEndpoint(s))

	group.POST("/stake", controller.OpenStakeEndpoint(s))
	group.POST("/unstake", controller.UnstakeEndpoint(s))
	group.POST("/emergencyUnstake", controller.EmergencyUnstakeEndpoint(s))

	admin := group.Group("/admin")
	admin.POST("/registerProject", controller.RegisterProjectEndpoint(s))
	admin.POST("/unregisterProject", controller.UnregisterProjectEndpoint(s))
	admin.POST("/setProjectAsset", controller.SetProjectAssetEndpoint(s))
	admin.POST("/addDuration", controller.AddDurationEndpoint(s))
	admin.POST("/removeDuration", controller.RemoveDurationEndpoint(s))
	admin.POST("/setFeeRate", controller.SetFeeRateEndpoint(s))
	admin.POST("/setFeeRecipient", controller.SetFeeRecipientEndpoint(s))
	return r
}

func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
			c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
			c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		if method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
		}
		c.Next()
	}
}
