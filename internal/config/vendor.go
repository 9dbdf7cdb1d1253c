package config

// Vendor holds the protocol constants of the wallet campaign API. The
// parameter values are part of the vendor contract and must match it
// byte-for-byte; they are assembled once at startup and passed by value so
// nothing can mutate them mid-run. Test code points BaseURL and LoginURL at
// fake servers.
type Vendor struct {
	Host         string
	BaseURL      string
	ActivityCode string

	// Marker substring identifying the browse-group task in the task list.
	BrowseTaskMarker string

	// Opaque signing parameter required by the getTask endpoint.
	SignParam string

	// Brand filter sent to the prize catalog endpoint.
	PrizeBrands string

	MobileUA  string
	DesktopUA string

	// Full identity-provider URL used to mint a session from a passToken.
	LoginURL string

	// QR login endpoint of the identity provider.
	QRLoginURL string
}

const apiHost = "m.jr.airstarfinance.net"

const mobileUA = "Mozilla/5.0 (Linux; U; Android 14; zh-CN; M2012K11AC Build/UKQ1.230804.001; " +
	"AppBundle/com.mipay.wallet; AppVersionName/6.89.1.5275.2323; AppVersionCode/20577595; " +
	"MiuiVersion/stable-V816.0.13.0.UMNCNXM; DeviceId/alioth; NetworkType/WIFI; " +
	"mix_version; WebViewVersion/118.0.0.0) AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Version/4.0 Mobile Safari/5.36 XiaoMi/MiuiBrowser/4.3"

const desktopUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36 Edg/139.0.0.0"

const serviceLoginURL = "https://account.xiaomi.com/pass/serviceLogin?callback=https%3A%2F%2Fapi.jr.airstarfinance.net%2Fsts" +
	"%3Fsign%3D1dbHuyAmee0NAZ2xsRw5vhdVQQ8%253D%26followup%3Dhttps%253A%252F%252Fm.jr.airstarfinance.net" +
	"%252Fmp%252Fapi%252Flogin%253Ffrom%253Dmipay_indexicon_TVcard%2526deepLinkEnable%253Dfalse" +
	"%2526requestUrl%253Dhttps%25253A%25252F%25252Fm.jr.airstarfinance.net%25252Fmp%25252Factivity" +
	"%25252FvideoActivity%25253Ffrom%25253Dmipay_indexicon_TVcard%252526_noDarkMode%25253Dtrue" +
	"%252526_transparentNaviBar%25253Dtrue%252526cUserId%25253Dusyxgr5xjumiQLUoAKTOgvi858Q" +
	"%252526_statusBarHeight%25253D137&sid=jrairstar&_group=DEFAULT&_snsNone=true&_loginType=ticket"

// DefaultVendor returns the production vendor contract.
func DefaultVendor() Vendor {
	return Vendor{
		Host:             apiHost,
		BaseURL:          "https://" + apiHost,
		ActivityCode:     "2211-videoWelfare",
		BrowseTaskMarker: "浏览组浏览任务",
		SignParam:        "98lj8puDf9Tu/WwcyMpVyQ==",
		PrizeBrands:      "youku,mgtv,iqiyi,tencent,bilibili,other",
		MobileUA:         mobileUA,
		DesktopUA:        desktopUA,
		LoginURL:         serviceLoginURL,
		QRLoginURL:       "https://account.xiaomi.com/longPolling/loginUrl",
	}
}
