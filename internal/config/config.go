package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var Conf Config

type Config struct {
	Server ServerConf
	Mysql  MysqlConf
	Redis  RedisConf
	Kafka  KafkaConf
	JWT    JWTConf
}

type ServerConf struct {
	Addr string
}

type MysqlConf struct {
	Addr     string
	Database string
	Username string
	Password string
	Charset  string
}

type RedisConf struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConf struct {
	Brokers []string
	Topic   string
}

type JWTConf struct {
	AccessSecret  string
	RefreshSecret string
}

// Init 读取 config.yml，缺失项用默认值兜底；环境变量可覆盖（LEE_TUBE_ 前缀）
func Init() {
	viper.SetConfigType("yaml")
	viper.SetConfigName("config.yml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("../config")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("LEE_TUBE")
	viper.AutomaticEnv()

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("mysql.addr", "127.0.0.1:3306")
	viper.SetDefault("mysql.database", "leetube")
	viper.SetDefault("mysql.username", "root")
	viper.SetDefault("mysql.password", "")
	viper.SetDefault("mysql.charset", "utf8mb4")
	viper.SetDefault("redis.addr", "127.0.0.1:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("kafka.brokers", []string{"127.0.0.1:9092"})
	viper.SetDefault("kafka.topic", "engagement-events")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Warn("config file not found, using defaults")
		} else {
			logrus.Errorf("config error: %v", err)
		}
	} else {
		logrus.Infof("loaded config file: %s", viper.ConfigFileUsed())
	}

	Conf.Server.Addr = viper.GetString("server.addr")
	Conf.Mysql.Addr = viper.GetString("mysql.addr")
	Conf.Mysql.Database = viper.GetString("mysql.database")
	Conf.Mysql.Username = viper.GetString("mysql.username")
	Conf.Mysql.Password = viper.GetString("mysql.password")
	Conf.Mysql.Charset = viper.GetString("mysql.charset")
	Conf.Redis.Addr = viper.GetString("redis.addr")
	Conf.Redis.Password = viper.GetString("redis.password")
	Conf.Redis.DB = viper.GetInt("redis.db")
	Conf.Kafka.Brokers = viper.GetStringSlice("kafka.brokers")
	Conf.Kafka.Topic = viper.GetString("kafka.topic")
	Conf.JWT.AccessSecret = viper.GetString("jwt.access_secret")
	Conf.JWT.RefreshSecret = viper.GetString("jwt.refresh_secret")
}

// DSN 拼接 mysql 连接串
func (m MysqlConf) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=True&loc=Local",
		m.Username, m.Password, m.Addr, m.Database, m.Charset)
}
