package cdn

// Category describes what kind of infrastructure an address belongs to.
type Category string

const (
	CategoryCDN      Category = "cdn"
	CategoryCloud    Category = "cloud"
	CategoryHosting  Category = "hosting"
	CategorySecurity Category = "security"
)

// Provider is a known CDN/cloud/hosting/security operator.
type Provider struct {
	Name     string
	Category Category
}

// asnProviders maps autonomous system numbers to their operator. ASN is
// the strongest signal: it identifies the network operator regardless
// of which IP block or hostname is in use.
var asnProviders = map[uint]Provider{
	13335:  {"Cloudflare", CategoryCDN},
	209242: {"Cloudflare", CategoryCDN},
	54113:  {"Fastly", CategoryCDN},
	20940:  {"Akamai", CategoryCDN},
	16625:  {"Akamai", CategoryCDN},
	32787:  {"Akamai", CategoryCDN},
	22822:  {"Edgio (Limelight)", CategoryCDN},
	60068:  {"CDN77", CategoryCDN},
	200325: {"Bunny CDN", CategoryCDN},
	12989:  {"StackPath", CategoryCDN},
	36408:  {"CDNetworks", CategoryCDN},
	199524: {"G-Core Labs", CategoryCDN},
	16509:  {"Amazon Web Services", CategoryCloud},
	14618:  {"Amazon Web Services", CategoryCloud},
	// covers both Google Cloud and Google's own CDN-adjacent services;
	// plain Google infrastructure is flagged as cloud too
	15169:  {"Google", CategoryCloud},
	396982: {"Google Cloud", CategoryCloud},
	8075:   {"Microsoft Azure", CategoryCloud},
	8068:   {"Microsoft", CategoryCloud},
	31898:  {"Oracle Cloud", CategoryCloud},
	45102:  {"Alibaba Cloud", CategoryCloud},
	45090:  {"Tencent Cloud", CategoryCloud},
	14061:  {"DigitalOcean", CategoryHosting},
	63949:  {"Linode (Akamai)", CategoryHosting},
	16276:  {"OVH", CategoryHosting},
	24940:  {"Hetzner", CategoryHosting},
	20473:  {"Vultr", CategoryHosting},
	19551:  {"Imperva", CategorySecurity},
	30148:  {"Sucuri", CategorySecurity},
}

type hostnamePattern struct {
	Suffix   string
	Provider Provider
}

// hostnamePatterns is an ordered priority list of case-insensitive
// hostname suffixes. Order is significant: first match wins.
var hostnamePatterns = []hostnamePattern{
	{".cloudfront.net", Provider{"Amazon CloudFront", CategoryCDN}},
	{".akamaiedge.net", Provider{"Akamai", CategoryCDN}},
	{".akamaized.net", Provider{"Akamai", CategoryCDN}},
	{".akamaitechnologies.com", Provider{"Akamai", CategoryCDN}},
	{".edgekey.net", Provider{"Akamai", CategoryCDN}},
	{".edgesuite.net", Provider{"Akamai", CategoryCDN}},
	{".fastly.net", Provider{"Fastly", CategoryCDN}},
	{".fastlylb.net", Provider{"Fastly", CategoryCDN}},
	{".cloudflare.net", Provider{"Cloudflare", CategoryCDN}},
	{".cloudflare.com", Provider{"Cloudflare", CategoryCDN}},
	{".azureedge.net", Provider{"Azure CDN", CategoryCDN}},
	{".azurefd.net", Provider{"Azure Front Door", CategoryCDN}},
	{".b-cdn.net", Provider{"Bunny CDN", CategoryCDN}},
	{".kxcdn.com", Provider{"KeyCDN", CategoryCDN}},
	{".cdn77.org", Provider{"CDN77", CategoryCDN}},
	{".stackpathdns.com", Provider{"StackPath", CategoryCDN}},
	{".llnwd.net", Provider{"Edgio (Limelight)", CategoryCDN}},
	{".cachefly.net", Provider{"CacheFly", CategoryCDN}},
	{".netlify.app", Provider{"Netlify", CategoryCDN}},
	{".vercel.app", Provider{"Vercel", CategoryCDN}},
	{".amazonaws.com", Provider{"Amazon Web Services", CategoryCloud}},
	{".googleusercontent.com", Provider{"Google Cloud", CategoryCloud}},
	{".appspot.com", Provider{"Google Cloud", CategoryCloud}},
	{".azurewebsites.net", Provider{"Microsoft Azure", CategoryCloud}},
	{".cloudapp.azure.com", Provider{"Microsoft Azure", CategoryCloud}},
	{".oraclecloud.com", Provider{"Oracle Cloud", CategoryCloud}},
	{".herokuapp.com", Provider{"Heroku", CategoryHosting}},
	{".github.io", Provider{"GitHub Pages", CategoryHosting}},
	{".digitaloceanspaces.com", Provider{"DigitalOcean", CategoryHosting}},
	{".incapdns.net", Provider{"Imperva", CategorySecurity}},
	{".sucuri.net", Provider{"Sucuri", CategorySecurity}},
}

type ipPrefix struct {
	Prefix   string
	Provider Provider
}

// ipPrefixes is an ordered list of textual address prefixes:
// dotted-decimal for IPv4, colon-hex for IPv6. This is the weakest and
// most maintenance-heavy signal, so it is checked last and never
// overrides an ASN or hostname match.
var ipPrefixes = []ipPrefix{
	{"104.16.", Provider{"Cloudflare", CategoryCDN}},
	{"104.17.", Provider{"Cloudflare", CategoryCDN}},
	{"104.18.", Provider{"Cloudflare", CategoryCDN}},
	{"104.19.", Provider{"Cloudflare", CategoryCDN}},
	{"104.20.", Provider{"Cloudflare", CategoryCDN}},
	{"104.21.", Provider{"Cloudflare", CategoryCDN}},
	{"104.22.", Provider{"Cloudflare", CategoryCDN}},
	{"104.23.", Provider{"Cloudflare", CategoryCDN}},
	{"104.24.", Provider{"Cloudflare", CategoryCDN}},
	{"104.25.", Provider{"Cloudflare", CategoryCDN}},
	{"104.26.", Provider{"Cloudflare", CategoryCDN}},
	{"104.27.", Provider{"Cloudflare", CategoryCDN}},
	{"172.64.", Provider{"Cloudflare", CategoryCDN}},
	{"172.65.", Provider{"Cloudflare", CategoryCDN}},
	{"172.66.", Provider{"Cloudflare", CategoryCDN}},
	{"172.67.", Provider{"Cloudflare", CategoryCDN}},
	{"173.245.", Provider{"Cloudflare", CategoryCDN}},
	{"188.114.", Provider{"Cloudflare", CategoryCDN}},
	{"198.41.", Provider{"Cloudflare", CategoryCDN}},
	{"162.158.", Provider{"Cloudflare", CategoryCDN}},
	{"141.101.", Provider{"Cloudflare", CategoryCDN}},
	{"103.21.244.", Provider{"Cloudflare", CategoryCDN}},
	{"103.22.200.", Provider{"Cloudflare", CategoryCDN}},
	{"103.31.4.", Provider{"Cloudflare", CategoryCDN}},
	{"2606:4700:", Provider{"Cloudflare", CategoryCDN}},
	{"151.101.", Provider{"Fastly", CategoryCDN}},
	{"199.232.", Provider{"Fastly", CategoryCDN}},
	{"146.75.", Provider{"Fastly", CategoryCDN}},
	{"2a04:4e42:", Provider{"Fastly", CategoryCDN}},
	{"23.32.", Provider{"Akamai", CategoryCDN}},
	{"23.192.", Provider{"Akamai", CategoryCDN}},
	{"23.48.", Provider{"Akamai", CategoryCDN}},
	{"95.100.", Provider{"Akamai", CategoryCDN}},
	{"2.16.", Provider{"Akamai", CategoryCDN}},
	{"184.24.", Provider{"Akamai", CategoryCDN}},
	{"13.32.", Provider{"Amazon CloudFront", CategoryCDN}},
	{"13.224.", Provider{"Amazon CloudFront", CategoryCDN}},
	{"13.249.", Provider{"Amazon CloudFront", CategoryCDN}},
	{"52.84.", Provider{"Amazon CloudFront", CategoryCDN}},
	{"52.222.", Provider{"Amazon CloudFront", CategoryCDN}},
	{"54.230.", Provider{"Amazon CloudFront", CategoryCDN}},
	{"54.239.", Provider{"Amazon CloudFront", CategoryCDN}},
	{"99.84.", Provider{"Amazon CloudFront", CategoryCDN}},
	{"143.204.", Provider{"Amazon CloudFront", CategoryCDN}},
	{"204.246.", Provider{"Amazon CloudFront", CategoryCDN}},
	{"2600:9000:", Provider{"Amazon CloudFront", CategoryCDN}},
	{"35.186.", Provider{"Google Cloud", CategoryCloud}},
	{"35.190.", Provider{"Google Cloud", CategoryCloud}},
	{"130.211.", Provider{"Google Cloud", CategoryCloud}},
	{"34.96.", Provider{"Google Cloud", CategoryCloud}},
	{"34.98.", Provider{"Google Cloud", CategoryCloud}},
	{"2600:1901:", Provider{"Google Cloud", CategoryCloud}},
}
