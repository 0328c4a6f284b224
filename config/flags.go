package config

import "github.com/spf13/pflag"

const (
	FlagToken      = "token"
	FlagDebug      = "debug"
	FlagConfigFile = "config"

	FlagProviderName  = "p_name"
	FlagProviderModel = "p_model"
	FlagProviderKey   = "p_key"
	FlagProviderAddr  = "p_addr"

	FlagStatusAddr = "status_addr"
)

// Defined set of flags for palbot configuration use.
var FlagSet = pflag.NewFlagSet("Palbot_Flags", pflag.PanicOnError)

var flagToConfigKeyMap = map[string]string{
	FlagToken: "bot.token",
	FlagDebug: "bot.debug",

	FlagProviderName:  "provider.name",
	FlagProviderModel: "provider.model",
	FlagProviderKey:   "provider.apikey",
	FlagProviderAddr:  "provider.endpoint",

	FlagStatusAddr: "status.address",
}

func init() {
	defineFlags(FlagSet)
}

func defineFlags(fs *pflag.FlagSet) {
	fs.String(FlagToken, "", "telegram bot api token")
	fs.Bool(FlagDebug, false, "debug log")
	fs.String(FlagConfigFile, "", "path to config file")

	fs.String(FlagProviderName, "", "provider's name")
	fs.String(FlagProviderModel, "", "base model to use")
	fs.String(FlagProviderKey, "", "provider's api key")
	fs.String(FlagProviderAddr, "", "provider's endpoint")

	fs.String(FlagStatusAddr, "", "status server listen address")
}
