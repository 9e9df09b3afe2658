package utils

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	StrictHostKeyVerification   = "strict"
	InsecureHostKeyVerification = "insecure"
)

// SSHConfig describes a bastion host that database sources tunnel through.
type SSHConfig struct {
	Host                    string `json:"host" validate:"required"`
	Port                    int    `json:"port" validate:"required,min=1,max=65535"`
	Username                string `json:"username" validate:"required"`
	PrivateKey              string `json:"private_key,omitempty" validate:"required_without=Password"`
	Passphrase              string `json:"passphrase,omitempty"`
	Password                string `json:"password,omitempty" validate:"required_without=PrivateKey"`
	HostKeyVerificationMode string `json:"host_key_verification_mode,omitempty" validate:"omitempty,oneof=strict insecure"`
	KnownHostsFilePath      string `json:"known_hosts_file_path,omitempty" validate:"required_if=HostKeyVerificationMode strict"`
}

// Validate checks the config and defaults the host key mode to insecure.
func (c *SSHConfig) Validate() error {
	if err := Validate(c); err != nil {
		return fmt.Errorf("invalid ssh config: %s", err)
	}
	if c.HostKeyVerificationMode == "" {
		c.HostKeyVerificationMode = InsecureHostKeyVerification
	}
	return nil
}

func (c *SSHConfig) hostKeyCallback() (ssh.HostKeyCallback, error) {
	switch c.HostKeyVerificationMode {
	case InsecureHostKeyVerification:
		return ssh.InsecureIgnoreHostKey(), nil // #nosec G106
	case StrictHostKeyVerification:
		if _, err := os.Stat(c.KnownHostsFilePath); err != nil {
			return nil, fmt.Errorf("known_hosts file validation failed: %w", err)
		}
		callback, err := knownhosts.New(c.KnownHostsFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts file: %w", err)
		}
		return callback, nil
	default:
		return nil, fmt.Errorf("unknown host key verification strategy: %s", c.HostKeyVerificationMode)
	}
}

func (c *SSHConfig) clientConfig() (*ssh.ClientConfig, error) {
	var authMethods []ssh.AuthMethod
	if c.Password != "" {
		authMethods = append(authMethods, ssh.Password(c.Password))
	}
	if c.PrivateKey != "" {
		signer, err := ParsePrivateKey(c.PrivateKey, c.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to parse SSH private key: %s", err)
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}

	callback, err := c.hostKeyCallback()
	if err != nil {
		return nil, fmt.Errorf("failed to get host key callback: %s", err)
	}

	return &ssh.ClientConfig{
		User:            c.Username,
		Auth:            authMethods,
		HostKeyCallback: callback,
		Timeout:         30 * time.Second,
	}, nil
}

// Connect opens the tunnel. The caller closes the returned client after the
// connections dialed through it.
func (c *SSHConfig) Connect() (*ssh.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	sshCfg, err := c.clientConfig()
	if err != nil {
		return nil, err
	}

	bastion := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	client, err := ssh.Dial("tcp", bastion, sshCfg)
	if err != nil {
		return nil, fmt.Errorf("ssh dial bastion %s: %s", bastion, err)
	}
	return client, nil
}

// ParsePrivateKey parses a private key from a PEM string
func ParsePrivateKey(pemText, passphrase string) (ssh.Signer, error) {
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase([]byte(pemText), []byte(passphrase))
	}

	signer, err := ssh.ParsePrivateKey([]byte(pemText))
	if err == nil {
		return signer, nil
	}
	if _, ok := err.(*ssh.PassphraseMissingError); ok {
		return nil, fmt.Errorf("SSH private key appears encrypted, enter the passphrase")
	}
	return nil, err
}

// SSHDialer dials through an open tunnel. Connections ignore deadlines,
// which crypto/ssh channels do not support; the mongo driver sets them
// unconditionally.
type SSHDialer struct {
	Client *ssh.Client
}

func (d *SSHDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.Client.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return ConnWithCustomDeadlineSupport(conn)
}

// NoDeadlineConn wraps a net.Conn to suppress "deadline not supported" errors from the crypto/ssh package.
type NoDeadlineConn struct {
	net.Conn
}

func (c *NoDeadlineConn) SetDeadline(_ time.Time) error {
	return nil
}

func (c *NoDeadlineConn) SetReadDeadline(_ time.Time) error {
	return nil
}

func (c *NoDeadlineConn) SetWriteDeadline(_ time.Time) error {
	return nil
}

func ConnWithCustomDeadlineSupport(conn net.Conn) (net.Conn, error) {
	if conn == nil {
		return nil, fmt.Errorf("connection is nil")
	}
	return &NoDeadlineConn{Conn: conn}, nil
}
