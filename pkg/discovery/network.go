package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// maxCIDRHosts limita el tamaño de un rango CIDR (equivale a un /22)
const maxCIDRHosts = 1024

// ParseIPRange parsea un rango de IPs y retorna la lista de IPs individuales.
// Formatos: "192.168.1.1-254", "192.168.1.0/24" o una IP suelta.
func ParseIPRange(ipRange string) ([]string, error) {
	ipRange = strings.TrimSpace(ipRange)

	if strings.Contains(ipRange, "/") {
		return parseCIDR(ipRange)
	}

	parts := strings.Split(ipRange, "-")
	if len(parts) == 2 {
		return parseRangeFormat(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	}

	if len(parts) == 1 {
		ip := net.ParseIP(ipRange)
		if ip == nil || ip.To4() == nil {
			return nil, fmt.Errorf("formato de IP inválido: %q", ipRange)
		}
		return []string{ip.To4().String()}, nil
	}

	return nil, fmt.Errorf("formato de rango inválido: %q. Use: 192.168.1.1-254 o 192.168.1.0/24", ipRange)
}

// parseRangeFormat maneja rangos como "192.168.1.1" y "254"
func parseRangeFormat(startIP, endOctet string) ([]string, error) {
	ip := net.ParseIP(startIP)
	if ip == nil {
		return nil, fmt.Errorf("IP inicial inválida: %q", startIP)
	}

	ipv4 := ip.To4()
	if ipv4 == nil {
		return nil, fmt.Errorf("solo se soporta IPv4: %s", startIP)
	}

	endNum, err := strconv.Atoi(endOctet)
	if err != nil {
		return nil, fmt.Errorf("octeto final inválido: %q", endOctet)
	}

	if endNum < 0 || endNum > 255 {
		return nil, fmt.Errorf("octeto fuera de rango (0-255): %d", endNum)
	}

	startNum := int(ipv4[3])
	if endNum < startNum {
		return nil, fmt.Errorf("rango descendente: %d > %d", startNum, endNum)
	}

	ips := make([]string, 0, endNum-startNum+1)
	for i := startNum; i <= endNum; i++ {
		ips = append(ips, net.IPv4(ipv4[0], ipv4[1], ipv4[2], byte(i)).String())
	}

	return ips, nil
}

// parseCIDR expande una red IPv4 sin incluir dirección de red ni broadcast
func parseCIDR(cidr string) ([]string, error) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("CIDR inválido: %w", err)
	}

	if ip.To4() == nil {
		return nil, fmt.Errorf("solo se soporta IPv4: %s", cidr)
	}

	ones, bits := ipNet.Mask.Size()
	hosts := 1 << (bits - ones)
	if hosts > maxCIDRHosts {
		return nil, fmt.Errorf("rango demasiado grande: %d hosts (máximo %d)", hosts, maxCIDRHosts)
	}

	base := ipNet.IP.To4()
	start := uint32(base[0])<<24 | uint32(base[1])<<16 | uint32(base[2])<<8 | uint32(base[3])

	// /31 y /32 no tienen red ni broadcast
	first, last := uint32(0), uint32(hosts-1)
	if hosts > 2 {
		first, last = 1, uint32(hosts-2)
	}

	ips := make([]string, 0, last-first+1)
	for off := first; off <= last; off++ {
		n := start + off
		ips = append(ips, net.IPv4(byte(n>>24), byte(n>>16), byte(n>>8), byte(n)).String())
	}

	return ips, nil
}
