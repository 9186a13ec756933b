// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "CounterFront")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "counterfront.log")
	viper.SetDefault("main.log.rotation", RotationSize)
	viper.SetDefault("main.log.maxsize", 1048576)

	viper.SetDefault("model.path", "alcohol3.tflite")
	viper.SetDefault("model.latentdim", 256)
	viper.SetDefault("model.sigma", 0.0003)
	viper.SetDefault("model.inputsize", 224)
	viper.SetDefault("model.contrast", 1.2)
	viper.SetDefault("model.threshold", 0.4)
	viper.SetDefault("model.threads", 0)
	viper.SetDefault("model.timeout", 30*time.Second)

	viper.SetDefault("upload.path", "Uploads/")
	viper.SetDefault("upload.maxsize", 5*1024*1024)
	viper.SetDefault("upload.allowedtypes", []string{"png", "jpg", "jpeg"})
	viper.SetDefault("upload.keepimages", false)

	viper.SetDefault("webserver.debug", false)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.corsorigins", []string{"http://localhost:3000"})
	viper.SetDefault("webserver.ratelimit", 10.0)
	viper.SetDefault("webserver.log.enabled", true)
	viper.SetDefault("webserver.log.path", "logs/web.log")
	viper.SetDefault("webserver.log.rotation", RotationSize)
	viper.SetDefault("webserver.log.maxsize", 10485760)

	viper.SetDefault("security.adminusername", "")
	viper.SetDefault("security.adminpasswordhash", "")
	viper.SetDefault("security.sessionsecret", "")
	viper.SetDefault("security.sessionduration", 7*24*time.Hour)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "results.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "counterfront")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "counterfront")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("notify.enabled", false)
	viper.SetDefault("notify.urls", []string{})
	viper.SetDefault("notify.threshold", 0.0)
}
