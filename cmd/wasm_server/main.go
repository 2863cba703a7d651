package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/mpihlak/ebiten-karting/pkg/config"
)

// serverConfig controls where the WASM build is written and served from.
type serverConfig struct {
	Addr        string `env:"KARTING_SERVER_ADDR" envDefault:":8080"`
	WasmDir     string `env:"KARTING_WASM_DIR" envDefault:"web"`
	OpenBrowser bool   `env:"KARTING_OPEN_BROWSER" envDefault:"true"`
}

const wasmFile = "karting.wasm"

func main() {
	var cfg serverConfig
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatal(err)
	}

	// Create web directory if it doesn't exist
	if err := os.MkdirAll(cfg.WasmDir, 0755); err != nil {
		log.Fatal("Failed to create web directory:", err)
	}

	fmt.Println("Building WASM version...")
	if err := buildWASM(cfg.WasmDir); err != nil {
		log.Fatal("Failed to build WASM:", err)
	}

	fmt.Println("Copying required files...")
	if err := copyWASMFiles(cfg.WasmDir); err != nil {
		log.Fatal("Failed to copy files:", err)
	}

	fmt.Println("Creating HTML file...")
	if err := createHTMLFile(cfg.WasmDir); err != nil {
		log.Fatal("Failed to create HTML file:", err)
	}

	files := http.FileServer(http.Dir(cfg.WasmDir))
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")

		// Handle WASM files with correct MIME type
		if filepath.Ext(r.URL.Path) == ".wasm" {
			w.Header().Set("Content-Type", "application/wasm")
		}
		files.ServeHTTP(w, r)
	})

	fmt.Printf("Karting server starting on http://localhost%s\n", cfg.Addr)
	fmt.Printf("Serving files from: %s/\n", cfg.WasmDir)

	if cfg.OpenBrowser {
		openBrowser(fmt.Sprintf("http://localhost%s", cfg.Addr))
	}

	log.Fatal(http.ListenAndServe(cfg.Addr, nil))
}

func buildWASM(dir string) error {
	cmd := exec.Command("go", "build", "-o", filepath.Join(dir, wasmFile), "./cmd/karting")
	cmd.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func copyWASMFiles(dir string) error {
	// Go 1.24 moved wasm_exec.js from misc/wasm to lib/wasm
	goRoot := runtime.GOROOT()
	var data []byte
	var err error
	for _, p := range []string{
		filepath.Join(goRoot, "lib", "wasm", "wasm_exec.js"),
		filepath.Join(goRoot, "misc", "wasm", "wasm_exec.js"),
	} {
		if data, err = os.ReadFile(p); err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to read wasm_exec.js: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "wasm_exec.js"), data, 0644); err != nil {
		return fmt.Errorf("failed to copy wasm_exec.js: %w", err)
	}
	return nil
}

func createHTMLFile(dir string) error {
	htmlPath := filepath.Join(dir, "index.html")

	// Check if index.html already exists, don't overwrite it
	if _, err := os.Stat(htmlPath); err == nil {
		fmt.Println("index.html already exists, keeping existing version")
		return nil
	}

	return os.WriteFile(htmlPath, []byte(indexHTML), 0644)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Ebiten Karting</title>
    <style>
        body {
            margin: 0;
            background: #1a1a1a;
            display: flex;
            flex-direction: column;
            align-items: center;
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            color: white;
        }
        h1 { color: #ff4444; }
        .loading { color: #ffcc00; padding: 40px; }
        .error { display: none; color: #ff6666; padding: 20px; border: 1px solid #ff6666; }
    </style>
</head>
<body>
    <h1>Ebiten Karting</h1>
    <div class="loading" id="loading">Loading...</div>
    <div class="error" id="error"></div>

    <script src="wasm_exec.js"></script>
    <script>
        const go = new Go();
        WebAssembly.instantiateStreaming(fetch("` + wasmFile + `"), go.importObject)
            .then((result) => {
                document.getElementById('loading').style.display = 'none';
                go.run(result.instance);
            })
            .catch((err) => {
                console.error('Failed to load WASM:', err);
                document.getElementById('loading').style.display = 'none';
                const e = document.getElementById('error');
                e.style.display = 'block';
                e.textContent = err.toString();
            });
    </script>
</body>
</html>`

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default: // "linux", "freebsd", "openbsd", "netbsd"
		cmd = "xdg-open"
	}
	args = append(args, url)

	// Don't wait for the command to finish and ignore errors
	go exec.Command(cmd, args...).Run()
}
