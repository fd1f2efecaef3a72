package oauth

import (
	"fmt"
	"net"
)

// FindAvailablePort returns the first loopback port in
// [preferred, preferred+attempts) that can be bound. Port 0 asks the
// kernel for any free port.
func FindAvailablePort(preferred, attempts int) (int, error) {
	if attempts < 1 {
		attempts = 1
	}
	for port := preferred; port < preferred+attempts; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			continue
		}
		addr, ok := listener.Addr().(*net.TCPAddr)
		listener.Close()
		if ok {
			return addr.Port, nil
		}
		return port, nil
	}
	return 0, fmt.Errorf("no available port in range %d-%d", preferred, preferred+attempts-1)
}
