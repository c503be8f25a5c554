package handler

import "html/template"

// Embed page markup: hls.js for MSE browsers, native HLS otherwise,
// Plyr for controls. Pure presentation, configured only with the
// manifest URL.
var embedPage = template.Must(template.New("embed").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>body{margin:0;background:#000;overflow:hidden;}video{width:100vw;height:100vh;}</style>
    <script src="https://cdn.jsdelivr.net/npm/hls.js@1"></script>
    <script src="https://cdn.plyr.io/3.8.3/plyr.js"></script>
    <link rel="stylesheet" href="https://cdn.plyr.io/3.8.3/plyr.css" />
</head>
<body>
    <video id="player" controls crossorigin playsinline></video>
    <script>
        const source = "{{.ManifestURL}}";
        const video = document.getElementById('player');
        const defaultOptions = { controls: ['play-large', 'play', 'progress', 'current-time', 'mute', 'volume', 'settings', 'fullscreen'] };

        if (Hls.isSupported()) {
            const hls = new Hls();
            hls.loadSource(source);
            hls.attachMedia(video);
            window.player = new Plyr(video, defaultOptions);
        } else {
            video.src = source;
            window.player = new Plyr(video, defaultOptions);
        }
    </script>
</body>
</html>
`))
