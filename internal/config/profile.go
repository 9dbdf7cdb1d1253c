package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile carries the device-identifying parameters attached to task and
// reward calls. The upstream scripts shipped several near-identical copies of
// the workflow that differed only in these values; a profile captures one
// such constant set, so a different spoofed device is a YAML file, not a
// fork of the code.
type Profile struct {
	Name      string `yaml:"name"`
	App       string `yaml:"app"`
	Device    string `yaml:"device"`
	Channel   string `yaml:"channel"`
	UserExtra string `yaml:"userExtra"`
	AppLimit  string `yaml:"appLimit"`

	// New-user trial task parameters.
	OAID             string `yaml:"oaid"`
	RegID            string `yaml:"regId"`
	ClaimRegID       string `yaml:"claimRegId"`
	VersionCode      string `yaml:"versionCode"`
	VersionName      string `yaml:"versionName"`
	NewUserChannel   string `yaml:"newUserChannel"`
	NewUserExtra     string `yaml:"newUserExtra"`
	NewUserClickURL  string `yaml:"newUserClickUrlId"`
}

// DefaultProfile returns the constant set of the most complete upstream
// workflow variant.
func DefaultProfile() Profile {
	return Profile{
		Name:    "default",
		App:     "com.mipay.wallet",
		Device:  "alioth",
		Channel: "mipay_indexicon_TVcard",
		UserExtra: `{"platformType":1,"com.miui.player":"4.27.0.4",` +
			`"com.miui.video":"v2024090290(MiVideo-UN)","com.mipay.wallet":"6.83.0.5175.2256"}`,
		AppLimit: `{"com.qiyi.video":false,"com.youku.phone":false,"com.tencent.qqlive":false,` +
			`"com.hunantv.imgo.activity":false,"com.cmcc.cmvideo":false,"com.sankuai.meituan":false,` +
			`"com.anjuke.android.app":false,"com.tal.abctimelibrary":false,"com.lianjia.beike":false,` +
			`"com.kmxs.reader":false,"com.jd.jrapp":false,"com.smile.gifmaker":true,"com.kuaishou.nebula":false}`,
		OAID:           "8c45c5802867e923",
		RegID:          "KWkK5VsKXiIbAH8Rf6kgU6tpDPyNWgXY8YCM1mQtt5nd7i1/4BqzPq0uY7OlIEOd",
		ClaimRegID:     "L522i5qLZR9+s25kEqPBJYbbHqUS4LrpuTsgl9kdsbcyU7tjWmx1BewlRNSSZaOT",
		VersionCode:    "20577622",
		VersionName:    "6.96.0.5453.2620",
		NewUserChannel: "mipay_indexicon_TVcard2test",
		NewUserExtra: `{"platformType":1,"com.miui.video":"v2023091090(MiVideo-ROM)",` +
			`"com.mipay.wallet":"6.96.0.5453.2620"}`,
		NewUserClickURL: "1306285",
	}
}

// LoadProfile reads a profile from a YAML file, filling unset fields from the
// default profile.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &profile); err != nil {
		return DefaultProfile(), fmt.Errorf("failed to unmarshal profile YAML: %w", err)
	}

	if profile.Name == "" {
		profile.Name = "custom"
	}
	return profile, nil
}
