// Package prescan orders the addresses of a range by how likely they are to
// be online, using common allocation patterns of the last octet.
//
// Priority tiers (0-100):
//   - 100: .1, .254 (routers/gateways)
//   - 90:  .2-.5, .250-.253 (reserved infrastructure)
//   - 80:  .6-.10 (early DHCP)
//   - 70:  .50, .100, .150 (DHCP peaks)
//   - 50:  .51-.99, .101-.149, .151-.200 (main DHCP pool)
//   - 20:  .11-.49, .201-.249 (long-tail)
//   - 0:   .0, .255
//
// Example:
//
//	r, _ := addr.ParseRange("192.168.1.0/24")
//	for _, ip := range prescan.Order(r) {
//		// 192.168.1.1, 192.168.1.254, 192.168.1.2, ...
//	}
package prescan
