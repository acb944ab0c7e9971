package printer

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewSelectsImplementation(t *testing.T) {
	if p, err := New(Config{}); err != nil || p.IsConnected() {
		t.Fatalf("blank type should give a null printer, got %v %v", p, err)
	}
	if _, err := New(Config{Type: TypeUSB}); err == nil {
		t.Fatal("usb without path should fail")
	}
	if _, err := New(Config{Type: TypeNetwork}); err == nil {
		t.Fatal("network without address should fail")
	}
	if _, err := New(Config{Type: "bluetooth"}); err == nil {
		t.Fatal("unknown type should fail")
	}
}

func TestUSBPrinterWritesDeviceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	p, err := New(Config{Type: TypeUSB, USBPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsConnected() {
		t.Fatal("existing device should report connected")
	}
	if err := p.Print([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "hello" {
		t.Fatalf("device contents = %q", got)
	}
}

func TestNetworkPrinterSendsBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	p, err := New(Config{Type: TypeNetwork, Address: ln.Addr().String(), DialTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Print([]byte{ESC, '@'}); err != nil {
		t.Fatal(err)
	}

	select {
	case data := <-received:
		if !bytes.Equal(data, []byte{ESC, '@'}) {
			t.Fatalf("unexpected bytes %v", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("printer never received data")
	}
}

func TestNetworkPrinterUnreachable(t *testing.T) {
	ln, _ := net.Listen("tcp", "127.0.0.1:0")
	addr := ln.Addr().String()
	ln.Close()

	p, _ := New(Config{Type: TypeNetwork, Address: addr, DialTimeout: 200 * time.Millisecond})
	if err := p.Print([]byte("x")); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestDocumentLayout(t *testing.T) {
	doc := NewDocument(20)
	doc.KeyValue("Total:", "47.04").ItemLine(2, "Paracetamol 500mg Tablets", "9.00")

	out := string(doc.Bytes())
	if !strings.HasPrefix(out, string([]byte{ESC, '@'})) {
		t.Fatal("document must start with init")
	}
	lines := strings.Split(strings.TrimPrefix(out, string([]byte{ESC, '@'})), "\n")
	if lines[0] != "Total:         47.04" {
		t.Fatalf("key/value line = %q", lines[0])
	}
	if len(lines[1]) != 20 || !strings.HasSuffix(lines[1], "9.00") || !strings.HasPrefix(lines[1], "2x Paracetamol") {
		t.Fatalf("item line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "   ") {
		t.Fatalf("wrapped name should be indented, got %q", lines[2])
	}
}

func TestDocumentStripsControlBytesFromText(t *testing.T) {
	doc := NewDocument(20)
	doc.Text("Ravi\x1b@\x1dV\x00 Kumar").KeyValue("Name:", "A\nB")

	body := strings.TrimPrefix(string(doc.Bytes()), string([]byte{ESC, '@'}))
	if strings.ContainsAny(body, string([]byte{ESC, GS, 0x00})) {
		t.Fatalf("control bytes leaked into %q", body)
	}
	lines := strings.Split(body, "\n")
	if lines[0] != "Ravi@V Kumar" {
		t.Fatalf("text line = %q", lines[0])
	}
	if lines[1] != "Name:             AB" {
		t.Fatalf("key/value line = %q", lines[1])
	}
}
