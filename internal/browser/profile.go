package browser

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

// Profile is the browser fingerprint presented by one browsing context.
type Profile struct {
	UserAgent           string
	Platform            string
	AcceptLanguage      string
	Locale              string
	Languages           []string
	Timezone            string
	Width               int
	Height              int
	DeviceScaleFactor   float64
	HardwareConcurrency int
}

var userAgents = []struct {
	ua       string
	platform string
}{
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36", "Win32"},
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36", "Win32"},
	{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36", "MacIntel"},
	{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36", "MacIntel"},
	{"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36", "Linux x86_64"},
}

var viewports = [][2]int{{1920, 1080}, {1536, 864}, {1440, 900}, {1366, 768}, {1280, 800}}

var timezones = []string{"Asia/Shanghai", "Asia/Chongqing", "Asia/Harbin"}

var cpuCounts = []int{4, 8, 12, 16}

// RandomProfile picks a plausible desktop Chrome fingerprint for a Chinese
// locale. pick(n) must return a value in [0, n); nil uses math/rand.
func RandomProfile(pick func(n int) int) Profile {
	if pick == nil {
		pick = rand.IntN
	}
	ua := userAgents[pick(len(userAgents))]
	vp := viewports[pick(len(viewports))]
	scale := 1.0
	if ua.platform == "MacIntel" {
		scale = 2.0
	}
	return Profile{
		UserAgent:           ua.ua,
		Platform:            ua.platform,
		AcceptLanguage:      "zh-CN,zh;q=0.9,en;q=0.8",
		Locale:              "zh-CN",
		Languages:           []string{"zh-CN", "zh", "en"},
		Timezone:            timezones[pick(len(timezones))],
		Width:               vp[0],
		Height:              vp[1],
		DeviceScaleFactor:   scale,
		HardwareConcurrency: cpuCounts[pick(len(cpuCounts))],
	}
}

const stealthTemplate = `(() => {
  const define = (obj, prop, value) => Object.defineProperty(obj, prop, { get: () => value, configurable: true });
  define(Navigator.prototype, 'webdriver', undefined);
  define(Navigator.prototype, 'languages', %s);
  define(Navigator.prototype, 'platform', %s);
  define(Navigator.prototype, 'hardwareConcurrency', %d);

  const plugins = [
    { name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
    { name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai', description: '' },
    { name: 'Native Client', filename: 'internal-nacl-plugin', description: '' },
  ];
  plugins.item = (i) => plugins[i] || null;
  plugins.namedItem = (n) => plugins.find((p) => p.name === n) || null;
  plugins.refresh = () => {};
  define(Navigator.prototype, 'plugins', plugins);

  if (!window.chrome) {
    window.chrome = {
      app: { isInstalled: false },
      runtime: {},
      loadTimes: () => ({}),
      csi: () => ({}),
    };
  }

  const permissions = window.navigator.permissions;
  if (permissions && permissions.query) {
    const query = permissions.query.bind(permissions);
    permissions.query = (params) =>
      params && params.name === 'notifications'
        ? Promise.resolve({ state: Notification.permission })
        : query(params);
  }
})();`

// StealthScript returns the script injected before any page script runs.
// It hides the automation flag and fabricates the navigator surface of p.
func StealthScript(p Profile) string {
	langs, _ := json.Marshal(p.Languages)
	platform, _ := json.Marshal(p.Platform)
	return fmt.Sprintf(stealthTemplate, langs, platform, p.HardwareConcurrency)
}
